package main

import (
	"testing"
	"time"

	"vidtext/internal/download"
	"vidtext/internal/history"
)

func TestFormatStatusLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"completed", "Completed"},
		{"transcribe_failed", "Transcribe Failed"},
		{"RUNNING", "Running"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := formatStatusLabel(tc.in); got != tc.want {
			t.Errorf("formatStatusLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatRunID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"abc", "abc"},
		{"0123456789abcdef", "01234567"},
	}
	for _, tc := range cases {
		if got := formatRunID(tc.in); got != tc.want {
			t.Errorf("formatRunID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDisplayTime(t *testing.T) {
	if got := formatDisplayTime(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := formatDisplayTime(stamp); got != "2026-03-14 09:26" {
		t.Fatalf("unexpected display time: %q", got)
	}
}

func TestBuildRunListRowsOrdersNewestFirst(t *testing.T) {
	older := &history.Run{
		ID:        "aaaaaaaa-1111",
		Source:    "/videos/older.mp4",
		Status:    history.StatusCompleted,
		Method:    "local",
		CreatedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	newer := &history.Run{
		ID:            "bbbbbbbb-2222",
		Source:        "/videos/newer.mp4",
		Status:        history.StatusFailed,
		SubtitleCount: 4,
		CreatedAt:     time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}

	rows := buildRunListRows([]*history.Run{older, newer})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "newer.mp4" || rows[1][1] != "older.mp4" {
		t.Fatalf("expected newest run first, got %v", rows)
	}
	if rows[0][0] != "bbbbbbbb" {
		t.Fatalf("expected truncated id, got %q", rows[0][0])
	}
	// failed run without a transcript shows a dash for the method
	if rows[0][3] != "-" {
		t.Fatalf("expected method placeholder, got %q", rows[0][3])
	}
	if rows[1][3] != "local" {
		t.Fatalf("expected local method, got %q", rows[1][3])
	}
	if rows[0][4] != "4" {
		t.Fatalf("expected subtitle count, got %q", rows[0][4])
	}
}

func TestBuildRunStatusRowsSortsKeys(t *testing.T) {
	rows := buildRunStatusRows(map[string]int{
		"failed":    1,
		"completed": 3,
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Completed" || rows[0][1] != "3" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "Failed" || rows[1][1] != "1" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestFormatVideoDuration(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, ""},
		{-3, ""},
		{212, "3m32s"},
		{3725, "1h2m5s"},
	}
	for _, tc := range cases {
		if got := formatVideoDuration(tc.in); got != tc.want {
			t.Errorf("formatVideoDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildVideoInfoRowsSkipsEmptyFields(t *testing.T) {
	rows := buildVideoInfoRows(&download.Info{
		ID:       "abc123",
		Title:    "Sample Video",
		Duration: 90,
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %v", rows)
	}
	for _, row := range rows {
		if row[0] == "Uploader" || row[0] == "URL" {
			t.Fatalf("expected empty fields to be skipped, got %v", rows)
		}
	}
}
