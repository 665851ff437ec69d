package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidtext/internal/history"
	"vidtext/internal/services"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}

	cmd.AddCommand(newRunsListCommand(ctx))
	cmd.AddCommand(newRunsShowCommand(ctx))
	cmd.AddCommand(newRunsClearCommand(ctx))
	cmd.AddCommand(newRunsBatchesCommand(ctx))

	return cmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]history.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := history.ParseStatus(raw)
				if !ok {
					return services.Wrap(services.ErrValidation, "cli", "runs", fmt.Sprintf("unknown status %q", raw), nil)
				}
				statuses = append(statuses, status)
			}

			return ctx.withHistory(ctx.configValue(), func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Source", "Status", "Method", "Subtitles", "Created"},
					buildRunListRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by run status (repeatable)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <runID>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(ctx.configValue(), func(store *history.Store) error {
				run, err := findRun(cmd.Context(), store, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if run == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Run %s not found\n", args[0])
					return nil
				}
				if asJSON {
					return writeJSON(cmd, newRunDocument(run))
				}

				rows := make([][]string, 0, 11)
				appendRow := func(field, value string) {
					if strings.TrimSpace(value) != "" {
						rows = append(rows, []string{field, value})
					}
				}
				appendRow("ID", run.ID)
				appendRow("Source", run.Source)
				appendRow("Status", formatStatusLabel(string(run.Status)))
				appendRow("Method", run.Method)
				appendRow("Subtitles", fmt.Sprintf("%d", run.SubtitleCount))
				appendRow("JSON", run.JSONPath)
				appendRow("Text", run.TextPath)
				appendRow("Error", run.ErrorMessage)
				appendRow("Batch", run.BatchID)
				appendRow("Created", formatDisplayTime(run.CreatedAt))
				appendRow("Updated", formatDisplayTime(run.UpdatedAt))

				table := renderTable(
					[]string{"Field", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(ctx.configValue(), func(store *history.Store) error {
				removed, err := store.ClearRuns(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", removed)
				return nil
			})
		},
	}
}

func newRunsBatchesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "List recorded batch sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(ctx.configValue(), func(store *history.Store) error {
				batches, err := store.ListBatches(cmd.Context())
				if err != nil {
					return err
				}
				if len(batches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Input", "Total", "Succeeded", "Failed", "Created"},
					buildBatchListRows(batches),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

// findRun resolves an exact run id first, then falls back to a unique id
// prefix so users can paste the shortened ids the list view prints.
func findRun(ctx context.Context, store *history.Store, id string) (*history.Run, error) {
	run, err := store.GetRun(ctx, id)
	if err != nil || run != nil {
		return run, err
	}
	if id == "" {
		return nil, nil
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	var match *history.Run
	for _, candidate := range runs {
		if strings.HasPrefix(candidate.ID, id) {
			if match != nil {
				return nil, services.Wrap(services.ErrValidation, "cli", "runs", fmt.Sprintf("run id %q is ambiguous", id), nil)
			}
			match = candidate
		}
	}
	return match, nil
}

type runDocument struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	Status        string `json:"status"`
	Method        string `json:"method,omitempty"`
	SubtitleCount int    `json:"subtitle_count"`
	JSONPath      string `json:"json_path,omitempty"`
	TextPath      string `json:"text_path,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	BatchID       string `json:"batch_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func newRunDocument(run *history.Run) runDocument {
	return runDocument{
		ID:            run.ID,
		Source:        run.Source,
		Status:        string(run.Status),
		Method:        run.Method,
		SubtitleCount: run.SubtitleCount,
		JSONPath:      run.JSONPath,
		TextPath:      run.TextPath,
		ErrorMessage:  run.ErrorMessage,
		BatchID:       run.BatchID,
		CreatedAt:     run.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     run.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
