package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Audio contains WAV extraction settings.
type Audio struct {
	SampleRate int `toml:"sample_rate"`
	Channels   int `toml:"channels"`
	// SegmentSeconds splits extracted audio into chunks of this length before
	// local transcription. Zero disables segmentation.
	SegmentSeconds int `toml:"segment_seconds"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	PreferRemote  bool   `toml:"prefer_remote"`
	Language      string `toml:"language"`
	RemoteAPIKey  string `toml:"remote_api_key"`
	RemoteBaseURL string `toml:"remote_base_url"`
	RemoteModel   string `toml:"remote_model"`
	WhisperModel  string `toml:"whisper_model"`
}

// Tools contains external binary overrides. Bare names resolve via PATH.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Whisper string `toml:"whisper"`
	YtDlp   string `toml:"ytdlp"`
}

// Batch contains directory processing settings.
type Batch struct {
	MaxWorkers      int      `toml:"max_workers"`
	VideoExtensions []string `toml:"video_extensions"`
}

// Timeouts contains per-call deadlines for external collaborators.
type Timeouts struct {
	ToolSeconds   int `toml:"tool_seconds"`
	RemoteSeconds int `toml:"remote_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Runs           bool   `toml:"runs"`
	Batches        bool   `toml:"batches"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for vidtext.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Audio: WAV extraction profile and optional segmentation
//   - Transcription: remote speech API and local whisper settings
//   - Tools: external binary overrides
//   - Batch: worker pool size and video extension filter
//   - Timeouts: per-call deadlines for subprocesses and HTTP
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Audio         Audio         `toml:"audio"`
	Transcription Transcription `toml:"transcription"`
	Tools         Tools         `toml:"tools"`
	Batch         Batch         `toml:"batch"`
	Timeouts      Timeouts      `toml:"timeouts"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidtext/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/vidtext/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidtext.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
// OutputDir is created on a best-effort basis because the process command may
// override it per invocation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for audio and subtitle extraction.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFmpeg); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for stream enumeration.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFprobe); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// WhisperBinary returns the local speech-to-text executable.
func (c *Config) WhisperBinary() string {
	if bin := strings.TrimSpace(c.Tools.Whisper); bin != "" {
		return bin
	}
	return defaultWhisperBinary
}

// YtDlpBinary returns the video download executable.
func (c *Config) YtDlpBinary() string {
	if bin := strings.TrimSpace(c.Tools.YtDlp); bin != "" {
		return bin
	}
	return defaultYtDlpBinary
}

// ToolTimeout returns the deadline applied to each external subprocess call.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Timeouts.ToolSeconds) * time.Second
}

// RemoteTimeout returns the deadline applied to each remote HTTP call.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Timeouts.RemoteSeconds) * time.Second
}

// HistoryDatabasePath returns the location of the run-history database.
func (c *Config) HistoryDatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the location of the batch single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "vidtext.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
