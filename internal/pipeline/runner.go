package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidtext/internal/config"
	"vidtext/internal/history"
	"vidtext/internal/logging"
	"vidtext/internal/media/ffmpeg"
	"vidtext/internal/notifications"
	"vidtext/internal/services"
	"vidtext/internal/srt"
	"vidtext/internal/transcribe"
)

// Transcriber produces text for an extracted audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (transcribe.Result, error)
}

// SubtitleSource extracts embedded subtitle files into a work directory and
// returns their paths in stream order.
type SubtitleSource interface {
	Extract(ctx context.Context, source, workDir string) ([]string, error)
}

// Runner walks one video through the extraction states and persists the
// aggregated record. Everything before persistence is best effort.
type Runner struct {
	cfg         *config.Config
	tool        MediaTool
	transcriber Transcriber
	subtitles   SubtitleSource
	store       *history.Store
	notifier    notifications.Service
	logger      *slog.Logger
}

// NewRunner wires the pipeline. store and notifier may be nil; run history
// and notifications are then skipped.
func NewRunner(cfg *config.Config, tool MediaTool, transcriber Transcriber, subtitles SubtitleSource, store *history.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:         cfg,
		tool:        tool,
		transcriber: transcriber,
		subtitles:   subtitles,
		store:       store,
		notifier:    notifier,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// RunResult reports what one run produced. States records the transitions in
// order; the final state of a successful run is always StatePersisted.
type RunResult struct {
	Record    ContentRecord
	States    []State
	AudioPath string
	JSONPath  string
	TextPath  string
}

// FinalState returns the last recorded state transition.
func (res *RunResult) FinalState() State {
	if len(res.States) == 0 {
		return StateInit
	}
	return res.States[len(res.States)-1]
}

// Process runs the full extraction for one video. Failed best-effort stages
// leave their record fields empty and the run continues; only writing the
// output artifacts fails the run.
func (r *Runner) Process(ctx context.Context, source string) (*RunResult, error) {
	if r == nil || r.tool == nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "process", "runner not configured", nil)
	}
	resolved, err := r.validateSource(source)
	if err != nil {
		return nil, err
	}
	outputDir, err := r.ensureOutputDir()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stamp := now.Format(FilenameTimestampLayout)

	run := r.startHistory(ctx, resolved)
	runID := uuid.NewString()
	if run != nil {
		runID = run.ID
	}
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSource(ctx, resolved)

	result := &RunResult{
		Record: ContentRecord{
			VideoPath:   resolved,
			RunID:       runID,
			ProcessedAt: now,
			Subtitles:   []srt.Entry{},
		},
		States: []State{StateInit},
	}

	logger := logging.WithContext(ctx, r.logger)
	advance := func(state State) {
		result.States = append(result.States, state)
		logger.Debug("state transition", logging.String("state", string(state)))
	}

	logger.Info("processing video")
	if version, probeErr := r.tool.Probe(ctx); probeErr != nil {
		logger.Warn("media tool probe failed, extraction will be degraded", logging.Error(probeErr))
	} else {
		logger.Debug("media tool available", logging.String("version", version))
	}

	audioPath := filepath.Join(outputDir, "audio_"+stamp+".wav")
	if err := r.tool.ExtractAudio(services.WithStage(ctx, "audio"), ffmpeg.AudioExtraction{
		Source:     resolved,
		Dest:       audioPath,
		SampleRate: r.cfg.Audio.SampleRate,
		Channels:   r.cfg.Audio.Channels,
	}); err != nil {
		advance(StateAudioFailed)
		advance(StateTranscribeFailed)
		logger.Warn("audio extraction failed, skipping transcription", logging.Error(err))
	} else {
		advance(StateAudioExtracted)
		result.AudioPath = audioPath
		logger.Info("audio extracted", logging.String("audio", audioPath))

		if r.transcriber == nil {
			advance(StateTranscribeFailed)
			logger.Warn("no transcription backend configured")
		} else if transcription, trErr := r.transcriber.Transcribe(services.WithStage(ctx, "transcribe"), audioPath); trErr != nil {
			advance(StateTranscribeFailed)
			logger.Warn("transcription failed, leaving transcript empty", logging.Error(trErr))
		} else {
			advance(StateTranscribed)
			result.Record.Transcription = &TranscriptionRecord{
				Text:   transcription.Text,
				Method: transcription.Method,
			}
			logger.Info("transcription complete",
				logging.String("method", string(transcription.Method)),
				logging.Int("characters", len(transcription.Text)),
			)
		}
	}

	if entries := r.collectSubtitles(ctx, resolved, logger); len(entries) > 0 {
		advance(StateSubtitlesExtracted)
		result.Record.Subtitles = entries
		logger.Info("subtitles extracted", logging.Int("entries", len(entries)))
	} else {
		advance(StateSubtitlesNone)
	}

	jsonPath := filepath.Join(outputDir, "video_content_"+stamp+".json")
	textPath := filepath.Join(outputDir, "video_text_"+stamp+".txt")
	if err := result.Record.WriteJSON(jsonPath); err != nil {
		return r.failRun(ctx, run, result, err)
	}
	if err := result.Record.WriteText(textPath); err != nil {
		return r.failRun(ctx, run, result, err)
	}
	advance(StatePersisted)
	result.JSONPath = jsonPath
	result.TextPath = textPath
	logger.Info("artifacts persisted",
		logging.String("json", jsonPath),
		logging.String("text", textPath),
	)

	r.finishHistory(ctx, run, result)
	r.notifyCompleted(ctx, result)
	return result, nil
}

// ExtractAudioOnly extracts the normalized WAV and stops. Unlike Process,
// extraction failure here is the whole job failing and is returned.
func (r *Runner) ExtractAudioOnly(ctx context.Context, source string) (string, error) {
	resolved, err := r.validateSource(source)
	if err != nil {
		return "", err
	}
	outputDir, err := r.ensureOutputDir()
	if err != nil {
		return "", err
	}

	ctx = services.WithSource(ctx, resolved)
	audioPath := filepath.Join(outputDir, "audio_"+time.Now().Format(FilenameTimestampLayout)+".wav")
	if err := r.tool.ExtractAudio(services.WithStage(ctx, "audio"), ffmpeg.AudioExtraction{
		Source:     resolved,
		Dest:       audioPath,
		SampleRate: r.cfg.Audio.SampleRate,
		Channels:   r.cfg.Audio.Channels,
	}); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "pipeline", "extract audio", "audio extraction failed", err)
	}
	logging.WithContext(ctx, r.logger).Info("audio extracted", logging.String("audio", audioPath))
	return audioPath, nil
}

// ExtractSubtitlesOnly extracts and parses embedded subtitles, writing a
// subtitles_<ts>.txt file when entries were found. The returned path is empty
// when the container had no usable subtitles.
func (r *Runner) ExtractSubtitlesOnly(ctx context.Context, source string) ([]srt.Entry, string, error) {
	resolved, err := r.validateSource(source)
	if err != nil {
		return nil, "", err
	}
	outputDir, err := r.ensureOutputDir()
	if err != nil {
		return nil, "", err
	}

	ctx = services.WithSource(ctx, resolved)
	logger := logging.WithContext(ctx, r.logger)
	entries := r.collectSubtitles(ctx, resolved, logger)
	if len(entries) == 0 {
		logger.Info("no subtitles found")
		return nil, "", nil
	}

	path := filepath.Join(outputDir, "subtitles_"+time.Now().Format(FilenameTimestampLayout)+".txt")
	if err := os.WriteFile(path, []byte(srt.FormatBlocks(entries)), 0o644); err != nil {
		return nil, "", services.Wrap(services.ErrTransient, "pipeline", "subtitles", "cannot write subtitle file", err)
	}
	logger.Info("subtitles saved", logging.String("file", path), logging.Int("entries", len(entries)))
	return entries, path, nil
}

func (r *Runner) collectSubtitles(ctx context.Context, source string, logger *slog.Logger) []srt.Entry {
	if r.subtitles == nil {
		return nil
	}
	ctx = services.WithStage(ctx, "subtitles")
	workDir, err := os.MkdirTemp("", "vidtext-subtitles-")
	if err != nil {
		logger.Warn("subtitle work dir creation failed", logging.Error(err))
		return nil
	}
	defer os.RemoveAll(workDir)

	files, err := r.subtitles.Extract(ctx, source, workDir)
	if err != nil {
		logger.Warn("subtitle extraction failed", logging.Error(err))
		return nil
	}
	for _, file := range files {
		entries, parseErr := srt.ParseFile(file)
		if parseErr != nil {
			logger.Warn("subtitle file unreadable, skipping",
				logging.String("file", file),
				logging.Error(parseErr),
			)
			continue
		}
		if len(entries) > 0 {
			return entries
		}
	}
	return nil
}

func (r *Runner) validateSource(source string) (string, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "process", "video path is required", nil)
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "pipeline", "process", "cannot resolve video path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "pipeline", "process", fmt.Sprintf("video file not found: %s", abs), nil)
		}
		return "", services.Wrap(services.ErrValidation, "pipeline", "process", "cannot access video file", err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "pipeline", "process", "video path is a directory", nil)
	}
	return abs, nil
}

func (r *Runner) ensureOutputDir() (string, error) {
	dir := strings.TrimSpace(r.cfg.Paths.OutputDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "pipeline", "output", "cannot resolve working directory", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "output", "cannot create output directory", err)
	}
	return dir, nil
}

func (r *Runner) startHistory(ctx context.Context, source string) *history.Run {
	if r.store == nil {
		return nil
	}
	batchID, _ := services.BatchIDFromContext(ctx)
	run, err := r.store.StartRun(ctx, source, batchID)
	if err != nil {
		r.logger.Warn("history insert failed, continuing without run history", logging.Error(err))
		return nil
	}
	return run
}

func (r *Runner) finishHistory(ctx context.Context, run *history.Run, result *RunResult) {
	if run == nil || r.store == nil {
		return
	}
	run.Status = history.StatusCompleted
	if result.Record.Transcription != nil {
		run.Method = string(result.Record.Transcription.Method)
	}
	run.SubtitleCount = len(result.Record.Subtitles)
	run.JSONPath = result.JSONPath
	run.TextPath = result.TextPath
	if err := r.store.UpdateRun(ctx, run); err != nil {
		r.logger.Warn("history update failed", logging.Error(err))
	}
}

func (r *Runner) failRun(ctx context.Context, run *history.Run, result *RunResult, err error) (*RunResult, error) {
	wrapped := services.Wrap(services.ErrTransient, "pipeline", "persist", "cannot write output artifacts", err)
	if run != nil && r.store != nil {
		run.Status = history.StatusFailed
		run.ErrorMessage = wrapped.Error()
		if histErr := r.store.UpdateRun(ctx, run); histErr != nil {
			r.logger.Warn("history update failed", logging.Error(histErr))
		}
	}
	if r.notifier != nil {
		if notifyErr := r.notifier.NotifyRunFailed(ctx, result.Record.VideoPath, wrapped); notifyErr != nil {
			r.logger.Debug("run-failed notification not delivered", logging.Error(notifyErr))
		}
	}
	return nil, wrapped
}

func (r *Runner) notifyCompleted(ctx context.Context, result *RunResult) {
	if r.notifier == nil {
		return
	}
	method := ""
	if result.Record.Transcription != nil {
		method = string(result.Record.Transcription.Method)
	}
	if err := r.notifier.NotifyRunCompleted(ctx, result.Record.VideoPath, method, len(result.Record.Subtitles)); err != nil {
		r.logger.Debug("run-completed notification not delivered", logging.Error(err))
	}
}
