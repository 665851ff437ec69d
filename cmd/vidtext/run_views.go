package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vidtext/internal/history"
)

func buildRunStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildRunListRows(runs []*history.Run) [][]string {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]*history.Run, len(runs))
	copy(sorted, runs)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	rows := make([][]string, 0, len(sorted))
	for _, run := range sorted {
		source := strings.TrimSpace(run.Source)
		if source != "" {
			source = filepath.Base(source)
		} else {
			source = "Unknown"
		}
		method := strings.TrimSpace(run.Method)
		if method == "" {
			method = "-"
		}
		rows = append(rows, []string{
			formatRunID(run.ID),
			source,
			formatStatusLabel(string(run.Status)),
			method,
			fmt.Sprintf("%d", run.SubtitleCount),
			formatDisplayTime(run.CreatedAt),
		})
	}
	return rows
}

func buildBatchListRows(batches []*history.Batch) [][]string {
	if len(batches) == 0 {
		return nil
	}
	sorted := make([]*history.Batch, len(batches))
	copy(sorted, batches)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	rows := make([][]string, 0, len(sorted))
	for _, batch := range sorted {
		rows = append(rows, []string{
			formatRunID(batch.ID),
			batch.InputDir,
			fmt.Sprintf("%d", batch.Total),
			fmt.Sprintf("%d", batch.Succeeded),
			fmt.Sprintf("%d", batch.Failed),
			formatDisplayTime(batch.CreatedAt),
		})
	}
	return rows
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatRunID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
