package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"vidtext/internal/config"
	"vidtext/internal/history"
	"vidtext/internal/logging"
	"vidtext/internal/notifications"
	"vidtext/internal/pipeline"
	"vidtext/internal/services"
)

// Processor runs the extraction pipeline for one video.
type Processor interface {
	Process(ctx context.Context, source string) (*pipeline.RunResult, error)
}

// ProcessorFactory builds a processor bound to one output directory. The
// batch driver hands every video its own subdirectory so parallel items
// never write the same artifact paths.
type ProcessorFactory func(outputDir string) Processor

// Runner processes every matching video in a directory through the pipeline
// with a bounded worker pool. A file lock keeps invocations exclusive.
type Runner struct {
	cfg      *config.Config
	factory  ProcessorFactory
	store    *history.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewRunner wires the batch driver. store and notifier may be nil; batch
// history and notifications are then skipped.
func NewRunner(cfg *config.Config, factory ProcessorFactory, store *history.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		factory:  factory,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Run scans inputDir for videos with the configured extensions and processes
// each one. Item failures are recorded in the summary and the batch keeps
// going; a cancelled context stops work between items, not inside one.
func (r *Runner) Run(ctx context.Context, inputDir string) (*Summary, error) {
	if r == nil || r.factory == nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "batch runner not configured", nil)
	}
	resolved, err := r.validateInputDir(inputDir)
	if err != nil {
		return nil, err
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "run", "cannot create working directories", err)
	}
	outputDir := r.cfg.Paths.OutputDir

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "batch", "lock", "cannot acquire batch lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "batch", "lock", "another batch is already running", nil)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			r.logger.Warn("failed to release batch lock", logging.Error(unlockErr))
		}
	}()

	files, err := r.discoverVideos(resolved)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	session := r.startHistory(ctx, resolved, len(files))
	batchID := ""
	if session != nil {
		batchID = session.ID
	}

	logger := r.logger.With(logging.String("input_dir", resolved))
	logger.Info("batch started",
		logging.Int("videos", len(files)),
		logging.Int("workers", r.workerCount(len(files))),
	)
	r.notifyStarted(ctx, resolved, len(files))

	items := r.processAll(ctx, batchID, outputDir, files)

	summary := &Summary{
		BatchID:   batchID,
		InputDir:  resolved,
		OutputDir: outputDir,
		Items:     items,
	}
	for i := range items {
		if items[i].Err == nil {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start)

	now := time.Now()
	reportPath := filepath.Join(outputDir, "batch_processing_report_"+now.Format(pipeline.FilenameTimestampLayout)+".txt")
	if err := os.WriteFile(reportPath, []byte(renderReport(summary, now)), 0o644); err != nil {
		r.finishHistory(ctx, session, summary)
		return nil, services.Wrap(services.ErrTransient, "batch", "report", "cannot write batch report", err)
	}
	summary.ReportPath = reportPath

	r.finishHistory(ctx, session, summary)
	r.notifyCompleted(ctx, summary)
	logger.Info("batch complete",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.String("report", reportPath),
	)
	return summary, nil
}

// processAll fans files out to the worker pool and returns per-item results
// in file order. Workers write disjoint slice slots, so no locking is needed.
func (r *Runner) processAll(ctx context.Context, batchID, outputDir string, files []string) []ItemResult {
	runCtx := ctx
	if batchID != "" {
		runCtx = services.WithBatchID(ctx, batchID)
	}

	items := make([]ItemResult, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workerCount(len(files)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				items[idx] = r.processItem(runCtx, outputDir, files[idx])
			}
		}()
	}
	for idx := range files {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return items
}

func (r *Runner) processItem(ctx context.Context, outputDir, source string) ItemResult {
	if err := ctx.Err(); err != nil {
		return ItemResult{Source: source, Err: err}
	}

	logger := r.logger.With(logging.String("video", filepath.Base(source)))
	logger.Info("processing batch item")

	itemDir := filepath.Join(outputDir, videoStem(source))
	run, err := r.factory(itemDir).Process(ctx, source)
	if err != nil {
		logger.Error("batch item failed", logging.Error(err))
		return ItemResult{Source: source, Err: err}
	}
	logger.Info("batch item complete", logging.String("state", string(run.FinalState())))
	return ItemResult{Source: source, Run: run}
}

func (r *Runner) workerCount(total int) int {
	workers := r.cfg.Batch.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}
	return workers
}

func (r *Runner) validateInputDir(dir string) (string, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "batch", "run", "input directory is required", nil)
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "batch", "run", "cannot resolve input directory", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "batch", "run", fmt.Sprintf("input directory not found: %s", abs), nil)
		}
		return "", services.Wrap(services.ErrValidation, "batch", "run", "cannot access input directory", err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "batch", "run", "input path is not a directory", nil)
	}
	return abs, nil
}

// discoverVideos lists matching files directly under inputDir, sorted by
// name. The scan is not recursive.
func (r *Runner) discoverVideos(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "scan", "cannot read input directory", err)
	}

	wanted := make(map[string]struct{}, len(r.cfg.Batch.VideoExtensions))
	for _, ext := range r.cfg.Batch.VideoExtensions {
		wanted["."+strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		files = append(files, filepath.Join(inputDir, entry.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "scan", fmt.Sprintf("no video files found in %s", inputDir), nil)
	}
	return files, nil
}

func videoStem(source string) string {
	base := filepath.Base(source)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}

func (r *Runner) startHistory(ctx context.Context, inputDir string, total int) *history.Batch {
	if r.store == nil {
		return nil
	}
	session, err := r.store.StartBatch(ctx, inputDir, total)
	if err != nil {
		r.logger.Warn("history insert failed, continuing without batch history", logging.Error(err))
		return nil
	}
	return session
}

func (r *Runner) finishHistory(ctx context.Context, session *history.Batch, summary *Summary) {
	if session == nil || r.store == nil {
		return
	}
	session.Succeeded = summary.Succeeded
	session.Failed = summary.Failed
	session.ReportPath = summary.ReportPath
	if err := r.store.UpdateBatch(ctx, session); err != nil {
		r.logger.Warn("history update failed", logging.Error(err))
	}
}

func (r *Runner) notifyStarted(ctx context.Context, inputDir string, count int) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyBatchStarted(ctx, inputDir, count); err != nil {
		r.logger.Debug("batch-started notification not delivered", logging.Error(err))
	}
}

func (r *Runner) notifyCompleted(ctx context.Context, summary *Summary) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyBatchCompleted(ctx, summary.Succeeded, summary.Failed, summary.Duration); err != nil {
		r.logger.Debug("batch-completed notification not delivered", logging.Error(err))
	}
}
