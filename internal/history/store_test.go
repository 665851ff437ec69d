package history_test

import (
	"context"
	"testing"

	"vidtext/internal/history"
	"vidtext/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	run, err := store.StartRun(ctx, "/videos/sample.mp4", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if run.Status != history.StatusRunning {
		t.Fatalf("expected status running, got %q", run.Status)
	}
	if run.CreatedAt.IsZero() || run.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set: %#v", run)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched == nil || fetched.Source != "/videos/sample.mp4" {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
}

func TestGetRunMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	run, err := store.GetRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil for missing run, got %#v", run)
	}
}

func TestUpdateRunPersistsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	run, err := store.StartRun(ctx, "/videos/sample.mp4", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	run.Status = history.StatusCompleted
	run.Method = "remote"
	run.SubtitleCount = 12
	run.JSONPath = "/out/video_content_20240101_120000.json"
	run.TextPath = "/out/video_text_20240101_120000.txt"
	if err := store.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected run to exist")
	}
	if fetched.Status != history.StatusCompleted {
		t.Fatalf("expected completed, got %q", fetched.Status)
	}
	if fetched.Method != "remote" || fetched.SubtitleCount != 12 {
		t.Fatalf("unexpected run fields: %#v", fetched)
	}
	if fetched.JSONPath != run.JSONPath || fetched.TextPath != run.TextPath {
		t.Fatalf("unexpected artifact paths: %#v", fetched)
	}
	if !fetched.Finished() {
		t.Fatal("expected completed run to report finished")
	}
}

func TestUpdateRunRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	run, err := store.StartRun(ctx, "/videos/broken.mp4", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	run.Status = history.StatusFailed
	run.ErrorMessage = "audio extraction failed"
	if err := store.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.Status != history.StatusFailed || fetched.ErrorMessage != "audio extraction failed" {
		t.Fatalf("unexpected failed run: %#v", fetched)
	}
}

func TestListRunsFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	first, err := store.StartRun(ctx, "/videos/a.mp4", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	second, err := store.StartRun(ctx, "/videos/b.mp4", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if _, err := store.StartRun(ctx, "/videos/c.mp4", ""); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	first.Status = history.StatusCompleted
	if err := store.UpdateRun(ctx, first); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}
	second.Status = history.StatusFailed
	if err := store.UpdateRun(ctx, second); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	all, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}

	completed, err := store.ListRuns(ctx, history.StatusCompleted)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != first.ID {
		t.Fatalf("unexpected completed runs: %#v", completed)
	}

	terminal, err := store.ListRuns(ctx, history.StatusCompleted, history.StatusFailed)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(terminal) != 2 {
		t.Fatalf("expected 2 terminal runs, got %d", len(terminal))
	}
}

func TestBatchSessionLinkage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	batch, err := store.StartBatch(ctx, "/videos", 2)
	if err != nil {
		t.Fatalf("StartBatch failed: %v", err)
	}
	if batch.ID == "" || batch.Total != 2 {
		t.Fatalf("unexpected batch: %#v", batch)
	}

	if _, err := store.StartRun(ctx, "/videos/a.mp4", batch.ID); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if _, err := store.StartRun(ctx, "/videos/b.mp4", batch.ID); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if _, err := store.StartRun(ctx, "/videos/standalone.mp4", ""); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	linked, err := store.RunsForBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("RunsForBatch failed: %v", err)
	}
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked runs, got %d", len(linked))
	}
	for _, run := range linked {
		if run.BatchID != batch.ID {
			t.Fatalf("expected batch id %q, got %q", batch.ID, run.BatchID)
		}
	}

	batch.Succeeded = 1
	batch.Failed = 1
	batch.ReportPath = "/out/batch_report_20240101_120000.txt"
	if err := store.UpdateBatch(ctx, batch); err != nil {
		t.Fatalf("UpdateBatch failed: %v", err)
	}

	fetched, err := store.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if fetched == nil || fetched.Succeeded != 1 || fetched.Failed != 1 {
		t.Fatalf("unexpected batch after update: %#v", fetched)
	}
	if fetched.ReportPath != batch.ReportPath {
		t.Fatalf("unexpected report path: %q", fetched.ReportPath)
	}

	batches, err := store.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
}

func TestClearRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	batch, err := store.StartBatch(ctx, "/videos", 1)
	if err != nil {
		t.Fatalf("StartBatch failed: %v", err)
	}
	if _, err := store.StartRun(ctx, "/videos/a.mp4", batch.ID); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if _, err := store.StartRun(ctx, "/videos/b.mp4", ""); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	removed, err := store.ClearRuns(ctx)
	if err != nil {
		t.Fatalf("ClearRuns failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 runs removed, got %d", removed)
	}

	all, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty history, got %d runs", len(all))
	}
	batches, err := store.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	run, err := first.StartRun(context.Background(), "/videos/persisted.mp4", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := testsupport.MustOpenHistory(t, cfg)
	fetched, err := second.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched == nil || fetched.Source != "/videos/persisted.mp4" {
		t.Fatalf("expected run to survive reopen: %#v", fetched)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  history.Status
		ok    bool
	}{
		{"completed", history.StatusCompleted, true},
		{" RUNNING ", history.StatusRunning, true},
		{"failed", history.StatusFailed, true},
		{"pending", history.StatusPending, true},
		{"bogus", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := history.ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
