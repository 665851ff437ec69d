package pipeline

import (
	"context"
	"time"

	"vidtext/internal/media/ffmpeg"
	"vidtext/internal/media/ffprobe"
)

// MediaTool is the narrow external-tool surface the pipeline depends on.
// *ffmpeg.Runner satisfies it; tests substitute fakes.
type MediaTool interface {
	Probe(ctx context.Context) (string, error)
	ExtractAudio(ctx context.Context, req ffmpeg.AudioExtraction) error
	CopySubtitleStream(ctx context.Context, req ffmpeg.SubtitleCopy) error
	ListStreams(ctx context.Context, path string) (ffprobe.Result, error)
}

// ToolWithTimeout wraps tool so every invocation carries its own deadline.
// A zero or negative timeout returns tool unchanged.
func ToolWithTimeout(tool MediaTool, timeout time.Duration) MediaTool {
	if timeout <= 0 {
		return tool
	}
	return &deadlineTool{tool: tool, timeout: timeout}
}

type deadlineTool struct {
	tool    MediaTool
	timeout time.Duration
}

func (d *deadlineTool) Probe(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.tool.Probe(ctx)
}

func (d *deadlineTool) ExtractAudio(ctx context.Context, req ffmpeg.AudioExtraction) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.tool.ExtractAudio(ctx, req)
}

func (d *deadlineTool) CopySubtitleStream(ctx context.Context, req ffmpeg.SubtitleCopy) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.tool.CopySubtitleStream(ctx, req)
}

func (d *deadlineTool) ListStreams(ctx context.Context, path string) (ffprobe.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.tool.ListStreams(ctx, path)
}
