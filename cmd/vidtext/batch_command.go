package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vidtext/internal/batch"
	"vidtext/internal/history"
	"vidtext/internal/notifications"
	"vidtext/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags transcriptionFlags
	var workers int
	var extensions []string

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Process every video in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := applyTranscriptionFlags(ctx.configValue(), flags)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Batch.MaxWorkers = workers
			}
			if len(extensions) > 0 {
				cfg.Batch.VideoExtensions = extensions
			}
			if err := cfg.Validate(); err != nil {
				return services.Wrap(services.ErrValidation, "cli", "flags", "", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withHistory(cfg, func(store *history.Store) error {
				notifier := notifications.NewService(cfg)
				factory := func(outputDir string) batch.Processor {
					itemCfg := *cfg
					itemCfg.Paths.OutputDir = outputDir
					return newPipelineRunner(&itemCfg, logger, store, notifier)
				}
				runner := batch.NewRunner(cfg, factory, store, notifier, logger)
				summary, err := runner.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printBatchSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}

	registerTranscriptionFlags(cmd, &flags)
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (defaults to batch.max_workers)")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "Video extensions to process (defaults to batch.video_extensions)")
	return cmd
}

func printBatchSummary(w io.Writer, summary *batch.Summary) {
	colorize := shouldColorize(w)
	for _, line := range renderSectionHeader("Batch Summary", colorize) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, renderStatusLine("Videos", statusInfo, fmt.Sprintf("%d", len(summary.Items)), colorize))
	fmt.Fprintln(w, renderStatusLine("Succeeded", statusOK, fmt.Sprintf("%d", summary.Succeeded), colorize))
	failedKind := statusOK
	if summary.Failed > 0 {
		failedKind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", summary.Failed), colorize))
	if summary.ReportPath != "" {
		fmt.Fprintln(w, renderStatusLine("Report", statusInfo, summary.ReportPath, colorize))
	}
}
