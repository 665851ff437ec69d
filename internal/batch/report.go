package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vidtext/internal/pipeline"
)

// ItemResult records the outcome of one video in a batch. Run is nil when
// the item failed.
type ItemResult struct {
	Source string
	Run    *pipeline.RunResult
	Err    error
}

// Succeeded reports whether the item completed.
func (it *ItemResult) Succeeded() bool { return it.Err == nil }

// Summary aggregates a finished batch.
type Summary struct {
	BatchID    string
	InputDir   string
	OutputDir  string
	Items      []ItemResult
	Succeeded  int
	Failed     int
	ReportPath string
	Duration   time.Duration
}

// renderReport produces the plain-text batch report: a header with totals
// followed by one numbered block per item.
func renderReport(summary *Summary, processedAt time.Time) string {
	var sb strings.Builder
	sb.WriteString("=== BATCH VIDEO PROCESSING REPORT ===\n\n")
	fmt.Fprintf(&sb, "Processed at: %s\n", processedAt.Format(pipeline.ProcessedAtLayout))
	fmt.Fprintf(&sb, "Input directory: %s\n", summary.InputDir)
	fmt.Fprintf(&sb, "Output directory: %s\n", summary.OutputDir)
	fmt.Fprintf(&sb, "Total videos processed: %d\n", len(summary.Items))
	fmt.Fprintf(&sb, "Successful: %d\n", summary.Succeeded)
	fmt.Fprintf(&sb, "Failed: %d\n\n", summary.Failed)

	sb.WriteString("=== PROCESSING DETAILS ===\n\n")
	for i, item := range summary.Items {
		name := filepath.Base(item.Source)
		if item.Err != nil {
			fmt.Fprintf(&sb, "%d. %s: FAILED\n", i+1, name)
			fmt.Fprintf(&sb, "   Error: %v\n", item.Err)
			sb.WriteString("\n")
			continue
		}

		fmt.Fprintf(&sb, "%d. %s: SUCCESS\n", i+1, name)
		if item.Run != nil {
			if tr := item.Run.Record.Transcription; tr != nil {
				fmt.Fprintf(&sb, "   Transcription method: %s\n", tr.Method)
				fmt.Fprintf(&sb, "   Transcription length: %d characters\n", len(tr.Text))
			}
			if entries := len(item.Run.Record.Subtitles); entries > 0 {
				fmt.Fprintf(&sb, "   Subtitles: %d entries\n", entries)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
