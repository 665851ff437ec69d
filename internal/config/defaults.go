package config

const (
	defaultLogDir               = "~/.local/share/vidtext/logs"
	defaultStateDir             = "~/.local/share/vidtext/state"
	defaultLogRetentionDays     = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultAudioSampleRate      = 16000
	defaultAudioChannels        = 1
	defaultRemoteBaseURL        = "https://api.openai.com/v1"
	defaultRemoteModel          = "whisper-1"
	defaultWhisperModel         = "turbo"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultWhisperBinary        = "whisper"
	defaultYtDlpBinary          = "yt-dlp"
	defaultBatchMaxWorkers      = 4
	defaultToolTimeoutSeconds   = 120
	defaultRemoteTimeoutSeconds = 30
	defaultNotifyRequestTimeout = 10
)

func defaultVideoExtensions() []string {
	return []string{"mp4", "mov", "avi", "mkv", "webm"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Audio: Audio{
			SampleRate: defaultAudioSampleRate,
			Channels:   defaultAudioChannels,
		},
		Transcription: Transcription{
			RemoteBaseURL: defaultRemoteBaseURL,
			RemoteModel:   defaultRemoteModel,
			WhisperModel:  defaultWhisperModel,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Whisper: defaultWhisperBinary,
			YtDlp:   defaultYtDlpBinary,
		},
		Batch: Batch{
			MaxWorkers:      defaultBatchMaxWorkers,
			VideoExtensions: defaultVideoExtensions(),
		},
		Timeouts: Timeouts{
			ToolSeconds:   defaultToolTimeoutSeconds,
			RemoteSeconds: defaultRemoteTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Runs:           true,
			Batches:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
