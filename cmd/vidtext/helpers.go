package main

import (
	"strings"

	"github.com/spf13/cobra"

	"vidtext/internal/config"
	"vidtext/internal/language"
	"vidtext/internal/services"
)

// transcriptionFlags are the per-invocation overrides shared by process and
// batch. Zero values leave the loaded configuration untouched.
type transcriptionFlags struct {
	outputDir    string
	remote       bool
	apiKey       string
	languageHint string
}

func registerTranscriptionFlags(cmd *cobra.Command, flags *transcriptionFlags) {
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for extraction artifacts")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "Prefer the remote speech API over the local engine")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "Remote speech API key (overrides config and environment)")
	cmd.Flags().StringVar(&flags.languageHint, "language", "", "Spoken language hint (ISO 639-1 code or English name)")
}

// applyTranscriptionFlags copies cfg and folds the flag overrides in. The
// result is re-validated so a --remote without any API key fails the same way
// an inconsistent config file would.
func applyTranscriptionFlags(cfg *config.Config, flags transcriptionFlags) (*config.Config, error) {
	clone := *cfg
	if dir := strings.TrimSpace(flags.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "flags", "cannot resolve output directory", err)
		}
		clone.Paths.OutputDir = expanded
	}
	if flags.remote {
		clone.Transcription.PreferRemote = true
	}
	if key := strings.TrimSpace(flags.apiKey); key != "" {
		clone.Transcription.RemoteAPIKey = key
	}
	if hint := strings.TrimSpace(flags.languageHint); hint != "" {
		normalized, err := language.Normalize(hint)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "flags", "", err)
		}
		clone.Transcription.Language = normalized
	}
	if err := clone.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "flags", "", err)
	}
	return &clone, nil
}
