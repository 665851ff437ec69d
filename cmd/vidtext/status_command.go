package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidtext/internal/deps"
	"vidtext/internal/history"
	"vidtext/internal/language"
	"vidtext/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dependency, directory, and run history status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Directories", colorize) {
				fmt.Fprintln(stdout, line)
			}
			directories := []preflight.Result{
				preflight.CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
				preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
			}
			for _, result := range directories {
				fmt.Fprintln(stdout, directoryStatusLine(result, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Transcription", colorize) {
				fmt.Fprintln(stdout, line)
			}
			remote := preflight.CheckRemoteSpeechFromConfig(cfg)
			remoteKind := statusOK
			if !remote.Passed {
				remoteKind = statusWarn
			}
			fmt.Fprintln(stdout, renderStatusLine(remote.Name, remoteKind, remote.Detail, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Whisper model", statusInfo, whisperModelDetail(cfg.Transcription.WhisperModel), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Language", statusInfo, languageDetail(cfg.Transcription.Language), colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Run History", colorize) {
				fmt.Fprintln(stdout, line)
			}
			return ctx.withHistory(cfg, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context())
				if err != nil {
					return err
				}
				stats := make(map[string]int, len(runs))
				for _, run := range runs {
					stats[string(run.Status)]++
				}
				rows := buildRunStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "No runs recorded")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprint(stdout, table)
				return nil
			})
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	missing := make([]string, 0)
	available := 0
	for _, dep := range statuses {
		if dep.Available {
			available++
			continue
		}
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}

	lines := make([]string, 0, len(statuses)+2)
	summaryKind := statusOK
	if len(missing) > 0 {
		summaryKind = statusError
	}
	lines = append(lines, renderStatusLine("Summary", summaryKind, fmt.Sprintf("%d/%d tools available", available, len(statuses)), colorize))

	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

func directoryStatusLine(result preflight.Result, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, statusError, result.Detail, colorize)
}

func whisperModelDetail(model string) string {
	if strings.TrimSpace(model) == "" {
		return "default"
	}
	return model
}

func languageDetail(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return "Auto-detect"
	}
	return language.DisplayName(hint)
}
