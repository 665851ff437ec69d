package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vidtext/internal/history"
	"vidtext/internal/notifications"
	"vidtext/internal/pipeline"
	"vidtext/internal/services"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var flags transcriptionFlags
	var audioOnly bool
	var subtitlesOnly bool

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Extract audio, transcription, and subtitles from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if audioOnly && subtitlesOnly {
				return services.Wrap(services.ErrValidation, "cli", "process", "specify only one of --audio-only or --subtitles-only", nil)
			}
			cfg, err := applyTranscriptionFlags(ctx.configValue(), flags)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withHistory(cfg, func(store *history.Store) error {
				notifier := notifications.NewService(cfg)
				runner := newPipelineRunner(cfg, logger, store, notifier)
				out := cmd.OutOrStdout()

				switch {
				case audioOnly:
					audioPath, err := runner.ExtractAudioOnly(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Audio saved to %s\n", audioPath)
					return nil
				case subtitlesOnly:
					entries, path, err := runner.ExtractSubtitlesOnly(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						fmt.Fprintln(out, "No subtitles found")
						return nil
					}
					fmt.Fprintf(out, "Extracted %d subtitle entries to %s\n", len(entries), path)
					return nil
				default:
					result, err := runner.Process(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					printRunSummary(out, result)
					return nil
				}
			})
		},
	}

	registerTranscriptionFlags(cmd, &flags)
	cmd.Flags().BoolVar(&audioOnly, "audio-only", false, "Stop after audio extraction and print the WAV path")
	cmd.Flags().BoolVar(&subtitlesOnly, "subtitles-only", false, "Extract embedded subtitles without transcribing")
	return cmd
}

func printRunSummary(w io.Writer, result *pipeline.RunResult) {
	colorize := shouldColorize(w)
	for _, line := range renderSectionHeader("Extraction Summary", colorize) {
		fmt.Fprintln(w, line)
	}
	if tr := result.Record.Transcription; tr != nil {
		detail := fmt.Sprintf("%d characters (%s)", len(tr.Text), tr.Method)
		fmt.Fprintln(w, renderStatusLine("Transcription", statusOK, detail, colorize))
	} else {
		fmt.Fprintln(w, renderStatusLine("Transcription", statusWarn, "none", colorize))
	}
	if count := len(result.Record.Subtitles); count > 0 {
		fmt.Fprintln(w, renderStatusLine("Subtitles", statusOK, fmt.Sprintf("%d entries", count), colorize))
	} else {
		fmt.Fprintln(w, renderStatusLine("Subtitles", statusWarn, "none", colorize))
	}
	fmt.Fprintln(w, renderStatusLine("JSON", statusInfo, result.JSONPath, colorize))
	fmt.Fprintln(w, renderStatusLine("Text", statusInfo, result.TextPath, colorize))
}
