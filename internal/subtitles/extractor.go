package subtitles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"vidtext/internal/language"
	"vidtext/internal/logging"
	"vidtext/internal/media/ffmpeg"
	"vidtext/internal/media/ffprobe"
)

// MediaTool is the narrow surface the extractor needs from the media runner.
type MediaTool interface {
	CopySubtitleStream(ctx context.Context, req ffmpeg.SubtitleCopy) error
	ListStreams(ctx context.Context, path string) (ffprobe.Result, error)
}

// Extractor pulls embedded subtitle streams out of video containers.
type Extractor struct {
	tool   MediaTool
	logger *slog.Logger
}

// NewExtractor constructs an extractor around the given media tool.
func NewExtractor(tool MediaTool, logger *slog.Logger) *Extractor {
	return &Extractor{
		tool:   tool,
		logger: logging.NewComponentLogger(logger, "subtitles"),
	}
}

// SetLogger updates the extractor's logging destination.
func (e *Extractor) SetLogger(logger *slog.Logger) {
	if e == nil {
		return
	}
	e.logger = logging.NewComponentLogger(logger, "subtitles")
}

type extractionStrategy struct {
	name string
	run  func(ctx context.Context, source, workDir string) ([]string, error)
}

// Extract copies embedded subtitle streams to SRT files under workDir and
// returns their paths in stream order. Strategies are tried in order: the
// container's default subtitle stream first, then enumeration of every
// subtitle stream by absolute index. An empty result with nil error means the
// container carries no subtitles, which is a normal outcome.
func (e *Extractor) Extract(ctx context.Context, source, workDir string) ([]string, error) {
	if e == nil || e.tool == nil {
		return nil, fmt.Errorf("subtitle extractor not initialized")
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("extract subtitles: source path required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, fmt.Errorf("extract subtitles: work directory required")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("extract subtitles: ensure work dir: %w", err)
	}

	strategies := []extractionStrategy{
		{name: "default_stream", run: e.extractDefaultStream},
		{name: "enumerated_streams", run: e.extractEnumeratedStreams},
	}

	var lastErr error
	for _, strategy := range strategies {
		paths, err := strategy.run(ctx, source, workDir)
		if err != nil {
			if e.logger != nil {
				e.logger.Debug("subtitle extraction strategy failed",
					logging.String("strategy", strategy.name),
					logging.Error(err),
				)
			}
			lastErr = err
			continue
		}
		// A successful strategy is definitive, including the empty answer
		// from enumeration when the container has no subtitle streams.
		return paths, nil
	}
	return nil, lastErr
}

// extractDefaultStream copies the container's first subtitle stream via the
// 0:s:0 selector. Failure is the normal signal to move on to enumeration.
func (e *Extractor) extractDefaultStream(ctx context.Context, source, workDir string) ([]string, error) {
	dest := filepath.Join(workDir, "subtitles.srt")
	if err := e.tool.CopySubtitleStream(ctx, ffmpeg.SubtitleCopy{
		Source:      source,
		Dest:        dest,
		StreamIndex: -1,
	}); err != nil {
		return nil, err
	}
	return []string{dest}, nil
}

// extractEnumeratedStreams probes the container and copies each subtitle
// stream individually. Streams that fail to copy are skipped; the strategy
// only fails when the probe fails or every present stream refuses to copy.
func (e *Extractor) extractEnumeratedStreams(ctx context.Context, source, workDir string) ([]string, error) {
	probe, err := e.tool.ListStreams(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("enumerate streams: %w", err)
	}
	streams := probe.SubtitleStreams()
	if len(streams) == 0 {
		if e.logger != nil {
			e.logger.Info("no subtitle streams in container", logging.String("source", source))
		}
		return []string{}, nil
	}

	if e.logger != nil {
		e.logger.Info("enumerated subtitle streams",
			logging.String("source", source),
			logging.Int("count", len(streams)),
		)
	}

	extracted := make([]string, 0, len(streams))
	for i, stream := range streams {
		dest := filepath.Join(workDir, fmt.Sprintf("subtitles_%d.srt", i))
		if err := e.tool.CopySubtitleStream(ctx, ffmpeg.SubtitleCopy{
			Source:      source,
			Dest:        dest,
			StreamIndex: stream.Index,
		}); err != nil {
			if e.logger != nil {
				e.logger.Warn("subtitle stream copy failed, skipping",
					logging.Int("stream_index", stream.Index),
					logging.String("codec", stream.CodecName),
					logging.Error(err),
				)
			}
			continue
		}
		if e.logger != nil {
			e.logger.Debug("subtitle stream copied",
				logging.Int("stream_index", stream.Index),
				logging.String("language", language.DisplayName(stream.Tags.Language)),
			)
		}
		extracted = append(extracted, dest)
	}
	if len(extracted) == 0 {
		return nil, fmt.Errorf("all %d subtitle streams failed to copy", len(streams))
	}
	return extracted, nil
}
