package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"vidtext/internal/media/ffprobe"
)

// Default binary names when no override is configured.
const (
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"
)

// Defaults applied when an extraction request leaves the audio profile unset.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Runner executes ffmpeg and ffprobe for the pipeline's media operations:
// version probing, audio extraction, subtitle stream copying, stream listing,
// and audio segmentation.
type Runner struct {
	ffmpegBinary  string
	ffprobeBinary string
	run           commandRunner
}

// NewRunner constructs a runner around the given binaries. Empty names fall
// back to the bare commands resolved via PATH.
func NewRunner(ffmpegBinary, ffprobeBinary string) *Runner {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = FFmpegCommand
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = FFprobeCommand
	}
	return &Runner{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		run:           defaultCommandRunner,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (r *Runner) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// Probe runs the version check against ffmpeg and returns the first output
// line. A nil error means the binary exists and exited zero.
func (r *Runner) Probe(ctx context.Context) (string, error) {
	output, err := r.run(ctx, r.ffmpegBinary, "-version")
	if err != nil {
		return "", fmt.Errorf("probe: %w", err)
	}
	line := string(output)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line), nil
}

// AudioExtraction describes the inputs for deriving a speech-ready WAV track
// from a video container.
type AudioExtraction struct {
	Source     string
	Dest       string
	SampleRate int // Hz; zero means DefaultSampleRate
	Channels   int // zero means DefaultChannels
}

// ExtractAudio strips the video and writes a PCM s16le WAV resampled to the
// requested profile. A non-zero ffmpeg exit surfaces as an error carrying the
// captured tool output.
func (r *Runner) ExtractAudio(ctx context.Context, req AudioExtraction) error {
	if strings.TrimSpace(req.Source) == "" {
		return fmt.Errorf("extract audio: source path required")
	}
	if strings.TrimSpace(req.Dest) == "" {
		return fmt.Errorf("extract audio: destination path required")
	}
	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	channels := req.Channels
	if channels <= 0 {
		channels = DefaultChannels
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", req.Source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		req.Dest,
	}
	if _, err := r.run(ctx, r.ffmpegBinary, args...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// SubtitleCopy describes copying a single subtitle stream out of a container.
type SubtitleCopy struct {
	Source string
	Dest   string
	// StreamIndex is the absolute stream index to copy. Negative selects the
	// container's first subtitle stream via the 0:s:0 selector.
	StreamIndex int
}

// CopySubtitleStream demuxes one subtitle stream without transcoding. Failure
// is expected when the requested stream does not exist; callers fall back to
// stream enumeration.
func (r *Runner) CopySubtitleStream(ctx context.Context, req SubtitleCopy) error {
	if strings.TrimSpace(req.Source) == "" {
		return fmt.Errorf("copy subtitle stream: source path required")
	}
	if strings.TrimSpace(req.Dest) == "" {
		return fmt.Errorf("copy subtitle stream: destination path required")
	}
	selector := "0:s:0"
	if req.StreamIndex >= 0 {
		selector = fmt.Sprintf("0:%d", req.StreamIndex)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", req.Source,
		"-map", selector,
		"-c", "copy",
		req.Dest,
	}
	if _, err := r.run(ctx, r.ffmpegBinary, args...); err != nil {
		return fmt.Errorf("copy subtitle stream %s: %w", selector, err)
	}
	return nil
}

// ListStreams inspects the container with ffprobe and returns the parsed
// stream and format metadata.
func (r *Runner) ListStreams(ctx context.Context, path string) (ffprobe.Result, error) {
	if strings.TrimSpace(path) == "" {
		return ffprobe.Result{}, fmt.Errorf("list streams: path required")
	}
	output, err := r.run(ctx, r.ffprobeBinary, ffprobe.InspectArgs(path)...)
	if err != nil {
		return ffprobe.Result{}, fmt.Errorf("list streams: %w", err)
	}
	return ffprobe.Decode(output)
}

// AudioSegmentation describes splitting a WAV file into fixed-length chunks.
// Speech engines degrade on very long inputs; transcribing chunk-by-chunk
// keeps them inside their reliable window.
type AudioSegmentation struct {
	Source         string
	OutputDir      string
	SegmentSeconds int
}

// SegmentAudio splits the source into sequentially numbered WAV chunks under
// OutputDir and returns their paths in playback order.
func (r *Runner) SegmentAudio(ctx context.Context, req AudioSegmentation) ([]string, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, fmt.Errorf("segment audio: source path required")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, fmt.Errorf("segment audio: output directory required")
	}
	if req.SegmentSeconds <= 0 {
		return nil, fmt.Errorf("segment audio: invalid segment length %d", req.SegmentSeconds)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("segment audio: ensure output dir: %w", err)
	}
	pattern := filepath.Join(req.OutputDir, "segment_%03d.wav")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", req.Source,
		"-f", "segment",
		"-segment_time", strconv.Itoa(req.SegmentSeconds),
		"-c", "copy",
		pattern,
	}
	if _, err := r.run(ctx, r.ffmpegBinary, args...); err != nil {
		return nil, fmt.Errorf("segment audio: %w", err)
	}
	segments, err := filepath.Glob(filepath.Join(req.OutputDir, "segment_*.wav"))
	if err != nil {
		return nil, fmt.Errorf("segment audio: list segments: %w", err)
	}
	sort.Strings(segments)
	if len(segments) == 0 {
		return nil, fmt.Errorf("segment audio: ffmpeg produced no segments")
	}
	return segments, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}
