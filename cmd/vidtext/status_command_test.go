package main

import (
	"path/filepath"
	"testing"

	"vidtext/internal/history"
	"vidtext/internal/testsupport"
)

func TestCLIStatusSections(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe", "whisper", "yt-dlp"))

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "4/4 tools available")
	requireContains(t, out, "Ready (command: ffmpeg)")
	requireContains(t, out, "== Directories ==")
	requireContains(t, out, "read/write ok")
	requireContains(t, out, "== Transcription ==")
	requireContains(t, out, "Disabled (local transcription only)")
	requireContains(t, out, "turbo")
	requireContains(t, out, "Auto-detect")
	requireContains(t, out, "== Run History ==")
	requireContains(t, out, "No runs recorded")
}

func TestCLIStatusReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.FFmpeg = filepath.Join(env.baseDir, "missing", "ffmpeg")
	env.cfg.Tools.FFprobe = filepath.Join(env.baseDir, "missing", "ffprobe")
	env.cfg.Tools.Whisper = filepath.Join(env.baseDir, "missing", "whisper")
	env.cfg.Tools.YtDlp = filepath.Join(env.baseDir, "missing", "yt-dlp")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "0/4 tools available")
	requireContains(t, out, "Missing dependencies:")
	requireContains(t, out, "README.md")
}

func TestCLIStatusTalliesRuns(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	seedRun(t, env, filepath.Join(env.baseDir, "a.mp4"), history.StatusCompleted, nil)
	seedRun(t, env, filepath.Join(env.baseDir, "b.mp4"), history.StatusCompleted, nil)
	seedRun(t, env, filepath.Join(env.baseDir, "c.mp4"), history.StatusFailed, nil)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Completed")
	requireContains(t, out, "Failed")
	requireContains(t, out, "2")
}
