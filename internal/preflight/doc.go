// Package preflight provides readiness checks for the directories and
// external services the pipeline depends on.
//
// The CLI "vidtext status" command runs the individual check functions
// (CheckSystemDeps, CheckDirectoryAccess, CheckRemoteSpeechFromConfig) and
// renders the results as a table. RunAll bundles the directory and remote
// speech checks for callers that only need a pass/fail summary.
//
// Checks gated by a config toggle are skipped when disabled.
package preflight
