package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeTranscription()
	c.normalizeTools()
	c.normalizeBatch()
	c.normalizeTimeouts()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	} else {
		c.Paths.OutputDir = ""
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultAudioSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultAudioChannels
	}
	if c.Audio.SegmentSeconds < 0 {
		c.Audio.SegmentSeconds = 0
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.RemoteAPIKey = strings.TrimSpace(c.Transcription.RemoteAPIKey)
	if value, ok := os.LookupEnv("VIDTEXT_SPEECH_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Transcription.RemoteAPIKey = strings.TrimSpace(value)
	} else if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Transcription.RemoteAPIKey = strings.TrimSpace(value)
	}
	c.Transcription.RemoteBaseURL = strings.TrimSpace(c.Transcription.RemoteBaseURL)
	if c.Transcription.RemoteBaseURL == "" {
		c.Transcription.RemoteBaseURL = defaultRemoteBaseURL
	}
	c.Transcription.RemoteModel = strings.TrimSpace(c.Transcription.RemoteModel)
	if c.Transcription.RemoteModel == "" {
		c.Transcription.RemoteModel = defaultRemoteModel
	}
	c.Transcription.WhisperModel = strings.TrimSpace(c.Transcription.WhisperModel)
	if c.Transcription.WhisperModel == "" {
		c.Transcription.WhisperModel = defaultWhisperModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.Whisper = strings.TrimSpace(c.Tools.Whisper)
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
}

func (c *Config) normalizeBatch() {
	if c.Batch.MaxWorkers <= 0 {
		c.Batch.MaxWorkers = defaultBatchMaxWorkers
	}
	if len(c.Batch.VideoExtensions) == 0 {
		c.Batch.VideoExtensions = defaultVideoExtensions()
		return
	}
	exts := make([]string, 0, len(c.Batch.VideoExtensions))
	seen := make(map[string]struct{}, len(c.Batch.VideoExtensions))
	for _, ext := range c.Batch.VideoExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		normalized = strings.TrimPrefix(normalized, ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultVideoExtensions()
	}
	c.Batch.VideoExtensions = exts
}

func (c *Config) normalizeTimeouts() {
	if c.Timeouts.ToolSeconds <= 0 {
		c.Timeouts.ToolSeconds = defaultToolTimeoutSeconds
	}
	if c.Timeouts.RemoteSeconds <= 0 {
		c.Timeouts.RemoteSeconds = defaultRemoteTimeoutSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
