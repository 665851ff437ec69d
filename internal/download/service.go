package download

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vidtext/internal/logging"
	"vidtext/internal/services"
)

// Command is the default yt-dlp binary name.
const Command = "yt-dlp"

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// streamRunner executes a command and feeds each merged output line to
// onLine as it arrives.
type streamRunner func(ctx context.Context, onLine func(string), name string, args ...string) error

// Info is the subset of yt-dlp's metadata dump that the CLI reports.
type Info struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	WebpageURL string  `json:"webpage_url"`
	Duration   float64 `json:"duration"`
	Extension  string  `json:"ext"`
}

// Service wraps the yt-dlp CLI for version probing, metadata queries, and
// single-video downloads. Playlists are never expanded.
type Service struct {
	binary string
	logger *slog.Logger
	run    commandRunner
	stream streamRunner
}

// NewService constructs a downloader around the given binary. An empty name
// falls back to the bare command resolved via PATH.
func NewService(binary string, logger *slog.Logger) *Service {
	if strings.TrimSpace(binary) == "" {
		binary = Command
	}
	return &Service{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "download"),
		run:    defaultCommandRunner,
		stream: defaultStreamRunner,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(run commandRunner) {
	if s != nil && run != nil {
		s.run = run
	}
}

// WithStreamRunner sets a custom streaming runner (for testing).
func (s *Service) WithStreamRunner(stream streamRunner) {
	if s != nil && stream != nil {
		s.stream = stream
	}
}

// Available probes the binary with a version check and returns the reported
// version line.
func (s *Service) Available(ctx context.Context) (string, error) {
	output, err := s.run(ctx, s.binary, "--version")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "download", "probe", "yt-dlp is not available", err)
	}
	return firstLine(output), nil
}

// Info queries video metadata without downloading anything.
func (s *Service) Info(ctx context.Context, url string) (*Info, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrValidation, "download", "info", "video url is required", nil)
	}

	output, err := s.run(ctx, s.binary, "--dump-json", "--no-playlist", trimmed)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "download", "info", "yt-dlp metadata query failed", err)
	}

	var info Info
	if err := json.Unmarshal(bytes.TrimSpace(output), &info); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "download", "info", "cannot decode yt-dlp metadata", err)
	}
	return &info, nil
}

// Download fetches the best available format to outputPath and returns that
// path. An empty outputPath derives a timestamped video_<ts>.mp4 name. Tool
// progress lines are streamed to the debug log.
func (s *Service) Download(ctx context.Context, url, outputPath string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "download", "download", "video url is required", nil)
	}

	target := strings.TrimSpace(outputPath)
	if target == "" {
		target = "video_" + time.Now().Format("20060102_150405") + ".mp4"
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "download", "download", "cannot create output directory", err)
		}
	}

	logger := s.logger.With(logging.String("url", trimmed))
	logger.Info("downloading video", logging.String("output", target))

	sampler := logging.NewProgressSampler(0)
	onLine := func(line string) {
		if percent, ok := parseProgressPercent(line); ok {
			if sampler.ShouldLog(percent, "download", line) {
				logger.Debug("download progress",
					logging.Float64(logging.FieldProgressPercent, percent),
				)
			}
			return
		}
		logger.Debug("yt-dlp", logging.String("line", line))
	}
	if err := s.stream(ctx, onLine, s.binary, "--no-playlist", "-f", "best", "-o", target, trimmed); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "download", "download", "yt-dlp download failed", err)
	}

	logger.Info("video downloaded", logging.String("output", target))
	return target, nil
}

// progressLine matches yt-dlp's human progress output, e.g.
// "[download]  42.7% of 10.00MiB at 2.00MiB/s ETA 00:03".
var progressLine = regexp.MustCompile(`^\[download\]\s+([0-9]+(?:\.[0-9]+)?)%`)

func parseProgressPercent(line string) (float64, bool) {
	match := progressLine.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return percent, true
}

func firstLine(output []byte) string {
	line := string(output)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// defaultCommandRunner returns stdout alone so JSON output stays parseable;
// stderr is folded into the error on failure.
func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

// defaultStreamRunner merges stderr into stdout and delivers output line by
// line while the command runs.
func defaultStreamRunner(ctx context.Context, onLine func(string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return err
	}
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	return cmd.Wait()
}
