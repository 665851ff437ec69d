// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and source paths for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent classifications (usage error vs runtime failure).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
