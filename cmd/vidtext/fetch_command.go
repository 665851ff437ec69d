package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidtext/internal/config"
	"vidtext/internal/download"
	"vidtext/internal/services"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var output string
	var infoOnly bool

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a video with yt-dlp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			svc := download.NewService(cfg.YtDlpBinary(), logger)
			if _, err := svc.Available(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if infoOnly {
				info, err := svc.Info(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				table := renderTable(
					[]string{"Field", "Value"},
					buildVideoInfoRows(info),
					[]columnAlignment{alignLeft, alignLeft},
				)
				fmt.Fprint(out, table)
				return nil
			}

			target := strings.TrimSpace(output)
			if target != "" {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return services.Wrap(services.ErrValidation, "cli", "fetch", "cannot resolve output path", err)
				}
				target = expanded
			}
			saved, err := svc.Download(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved to %s\n", saved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file for the download")
	cmd.Flags().BoolVar(&infoOnly, "info-only", false, "Print video metadata without downloading")
	return cmd
}

func buildVideoInfoRows(info *download.Info) [][]string {
	if info == nil {
		return nil
	}
	rows := make([][]string, 0, 6)
	appendRow := func(field, value string) {
		if strings.TrimSpace(value) != "" {
			rows = append(rows, []string{field, value})
		}
	}
	appendRow("ID", info.ID)
	appendRow("Title", info.Title)
	appendRow("Uploader", info.Uploader)
	appendRow("Duration", formatVideoDuration(info.Duration))
	appendRow("Format", info.Extension)
	appendRow("URL", info.WebpageURL)
	return rows
}

func formatVideoDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}
