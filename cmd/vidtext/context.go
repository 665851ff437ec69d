package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidtext/internal/config"
	"vidtext/internal/history"
	"vidtext/internal/language"
	"vidtext/internal/logging"
	"vidtext/internal/media/ffmpeg"
	"vidtext/internal/notifications"
	"vidtext/internal/pipeline"
	"vidtext/internal/services"
	"vidtext/internal/services/speech"
	"vidtext/internal/services/whisper"
	"vidtext/internal/subtitles"
	"vidtext/internal/transcribe"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "config", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// ensureLogger builds the process-wide logger from config, bumping the level
// to debug when --verbose is set, and prunes expired log files on first use.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logCfg := *cfg
		if c.verbose() {
			logCfg.Logging.Level = "debug"
		}
		logger, err := logging.NewFromConfig(&logCfg)
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "cli", "logging", "", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{filepath.Join(cfg.Paths.LogDir, "vidtext.log")},
		})
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withHistory(cfg *config.Config, fn func(*history.Store) error) error {
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// newPipelineRunner assembles the extraction pipeline for one configuration.
// The media tool is shared between audio extraction and subtitle copying so
// both honor the same per-call deadline.
func newPipelineRunner(cfg *config.Config, logger *slog.Logger, store *history.Store, notifier notifications.Service) *pipeline.Runner {
	tool := pipeline.ToolWithTimeout(ffmpeg.NewRunner(cfg.FFmpegBinary(), cfg.FFprobeBinary()), cfg.ToolTimeout())
	extractor := subtitles.NewExtractor(tool, logger)
	return pipeline.NewRunner(cfg, tool, newTranscriber(cfg, logger), extractor, store, notifier, logger)
}

// newTranscriber wires the backend chain from config: the remote client is
// attached only when an API key is present, the local whisper engine always.
func newTranscriber(cfg *config.Config, logger *slog.Logger) *transcribe.Service {
	local := whisper.NewService(whisper.Config{
		Binary: cfg.WhisperBinary(),
		Model:  cfg.Transcription.WhisperModel,
	})

	var remote transcribe.RemoteBackend
	if strings.TrimSpace(cfg.Transcription.RemoteAPIKey) != "" {
		remote = speech.NewClient(speech.Config{
			APIKey:         cfg.Transcription.RemoteAPIKey,
			BaseURL:        cfg.Transcription.RemoteBaseURL,
			Model:          cfg.Transcription.RemoteModel,
			TimeoutSeconds: cfg.Timeouts.RemoteSeconds,
		})
	}

	hint := cfg.Transcription.Language
	if normalized, err := language.Normalize(hint); err == nil {
		hint = normalized
	}

	svc := transcribe.NewService(transcribe.Config{
		PreferRemote:   cfg.Transcription.PreferRemote,
		Language:       hint,
		SegmentSeconds: cfg.Audio.SegmentSeconds,
		ToolTimeout:    cfg.ToolTimeout(),
	}, local, remote, logger)
	if cfg.Audio.SegmentSeconds > 0 {
		svc.WithSegmenter(ffmpeg.NewRunner(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
	}
	return svc
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
