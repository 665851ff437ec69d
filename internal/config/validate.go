package config

import (
	"errors"
	"fmt"
	"strings"

	"vidtext/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return errors.New("audio.sample_rate must be between 8000 and 192000")
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		return errors.New("audio.channels must be between 1 and 8")
	}
	if c.Audio.SegmentSeconds != 0 && c.Audio.SegmentSeconds < 10 {
		return errors.New("audio.segment_seconds must be 0 (disabled) or at least 10")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.PreferRemote && strings.TrimSpace(c.Transcription.RemoteAPIKey) == "" {
		return errors.New("transcription.remote_api_key must be set when transcription.prefer_remote is true (or set VIDTEXT_SPEECH_API_KEY)")
	}
	if hint := strings.TrimSpace(c.Transcription.Language); hint != "" {
		if _, err := language.Normalize(hint); err != nil {
			return fmt.Errorf("transcription.language %q is not a recognized language tag", hint)
		}
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.MaxWorkers < 1 {
		return errors.New("batch.max_workers must be >= 1")
	}
	if len(c.Batch.VideoExtensions) == 0 {
		return errors.New("batch.video_extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"timeouts.tool_seconds":   c.Timeouts.ToolSeconds,
		"timeouts.remote_seconds": c.Timeouts.RemoteSeconds,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
