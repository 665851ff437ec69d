package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"vidtext/internal/logging"
	"vidtext/internal/media/ffmpeg"
	"vidtext/internal/services/whisper"
)

// Method identifies which backend produced a transcription.
type Method string

const (
	MethodLocal  Method = "local"
	MethodRemote Method = "remote"
)

// Result carries a completed transcription. Text is always non-empty; a
// failed transcription is an error, never an empty Result.
type Result struct {
	Text   string
	Method Method
}

// RemoteBackend is the remote speech API surface the service needs.
type RemoteBackend interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// LocalBackend is the local speech engine surface the service needs.
type LocalBackend interface {
	Transcribe(ctx context.Context, audioPath, outputDir, language string) (whisper.Result, error)
}

// AudioSegmenter splits long audio into fixed-length chunks before local
// transcription.
type AudioSegmenter interface {
	SegmentAudio(ctx context.Context, req ffmpeg.AudioSegmentation) ([]string, error)
}

// Config controls transcription policy.
type Config struct {
	// PreferRemote puts the remote backend first in the chain.
	PreferRemote bool
	// Language is an optional ISO-639-1 hint passed to both backends.
	Language string
	// SegmentSeconds chunks audio before local transcription when positive
	// and a segmenter is attached.
	SegmentSeconds int
	// ToolTimeout bounds each local engine invocation.
	ToolTimeout time.Duration
}

// Service selects between transcription backends. Backends form an ordered
// chain: remote first when preferred and configured, local always last. A
// backend failure logs and moves on; only the chain running dry is an error.
type Service struct {
	cfg       Config
	local     LocalBackend
	remote    RemoteBackend
	segmenter AudioSegmenter
	logger    *slog.Logger
}

// NewService constructs a transcription service. remote may be nil when no
// credential is configured; the chain then contains only the local engine.
func NewService(cfg Config, local LocalBackend, remote RemoteBackend, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		local:  local,
		remote: remote,
		logger: logging.NewComponentLogger(logger, "transcribe"),
	}
}

// WithSegmenter attaches an audio segmenter used before local transcription.
func (s *Service) WithSegmenter(segmenter AudioSegmenter) {
	if s != nil {
		s.segmenter = segmenter
	}
}

// SetLogger updates the service's logging destination.
func (s *Service) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "transcribe")
}

type backend struct {
	method Method
	run    func(ctx context.Context, audioPath string) (string, error)
}

func (s *Service) backends() []backend {
	chain := make([]backend, 0, 2)
	if s.cfg.PreferRemote && s.remote != nil {
		chain = append(chain, backend{method: MethodRemote, run: s.transcribeRemote})
	}
	if s.local != nil {
		chain = append(chain, backend{method: MethodLocal, run: s.transcribeLocal})
	}
	return chain
}

// Transcribe runs the backend chain in order and returns the first success.
// The remote backend falling over is expected operation, logged as a warning
// before the local engine takes the same audio. Local failures distinguish
// unintelligible audio from a broken engine in the logs; both exhaust the
// chain.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if s == nil {
		return Result{}, fmt.Errorf("transcription service not initialized")
	}
	if strings.TrimSpace(audioPath) == "" {
		return Result{}, fmt.Errorf("transcribe: audio path required")
	}
	chain := s.backends()
	if len(chain) == 0 {
		return Result{}, fmt.Errorf("transcribe: no backends configured")
	}

	var lastErr error
	for _, b := range chain {
		text, err := b.run(ctx, audioPath)
		if err != nil {
			s.logBackendFailure(b.method, err)
			lastErr = err
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			lastErr = fmt.Errorf("%s backend returned empty text", b.method)
			s.logBackendFailure(b.method, lastErr)
			continue
		}
		return Result{Text: text, Method: b.method}, nil
	}
	return Result{}, lastErr
}

func (s *Service) logBackendFailure(method Method, err error) {
	if s.logger == nil {
		return
	}
	switch {
	case method == MethodRemote:
		s.logger.Warn("remote transcription failed, falling back to local engine",
			logging.Error(err),
		)
	case errors.Is(err, whisper.ErrNoSpeech):
		s.logger.Warn("speech engine could not understand the audio",
			logging.Error(err),
		)
	default:
		s.logger.Error("local speech engine failed",
			logging.Error(err),
		)
	}
}

func (s *Service) transcribeRemote(ctx context.Context, audioPath string) (string, error) {
	return s.remote.Transcribe(ctx, audioPath, s.cfg.Language)
}

// transcribeLocal feeds the audio to the local engine, optionally split into
// chunks first. A silent chunk is skipped; the whole input being silent
// surfaces as whisper.ErrNoSpeech.
func (s *Service) transcribeLocal(ctx context.Context, audioPath string) (string, error) {
	workDir, err := os.MkdirTemp("", "vidtext-whisper-")
	if err != nil {
		return "", fmt.Errorf("transcribe local: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputs := []string{audioPath}
	if s.segmenter != nil && s.cfg.SegmentSeconds > 0 {
		segCtx, cancel := s.toolContext(ctx)
		segments, segErr := s.segmenter.SegmentAudio(segCtx, ffmpeg.AudioSegmentation{
			Source:         audioPath,
			OutputDir:      filepath.Join(workDir, "segments"),
			SegmentSeconds: s.cfg.SegmentSeconds,
		})
		cancel()
		if segErr != nil {
			if s.logger != nil {
				s.logger.Warn("audio segmentation failed, transcribing whole file",
					logging.Error(segErr),
				)
			}
		} else {
			inputs = segments
		}
	}

	parts := make([]string, 0, len(inputs))
	sawSpeech := false
	for _, input := range inputs {
		callCtx, cancel := s.toolContext(ctx)
		result, err := s.local.Transcribe(callCtx, input, workDir, s.cfg.Language)
		cancel()
		if err != nil {
			if errors.Is(err, whisper.ErrNoSpeech) {
				continue
			}
			return "", err
		}
		sawSpeech = true
		parts = append(parts, result.Text)
	}
	if !sawSpeech {
		return "", whisper.ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}

func (s *Service) toolContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.ToolTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.ToolTimeout)
	}
	return ctx, func() {}
}
