package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"vidtext/internal/config"
	"vidtext/internal/deps"
	"vidtext/internal/services/speech"
)

// CheckRemoteSpeech verifies the remote transcription API is reachable and
// the credential is valid. Single attempt, bounded by the configured remote
// timeout.
func CheckRemoteSpeech(ctx context.Context, cfg *config.Config) Result {
	const name = "Remote speech API"

	if strings.TrimSpace(cfg.Transcription.RemoteAPIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, cfg.RemoteTimeout())
	defer cancel()

	client := speech.NewClient(speech.Config{
		APIKey:         cfg.Transcription.RemoteAPIKey,
		BaseURL:        cfg.Transcription.RemoteBaseURL,
		Model:          cfg.Transcription.RemoteModel,
		TimeoutSeconds: cfg.Timeouts.RemoteSeconds,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeRemoteError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckRemoteSpeechFromConfig evaluates remote transcription readiness for
// status displays. A disabled remote backend passes; the pipeline then runs
// local transcription only.
func CheckRemoteSpeechFromConfig(cfg *config.Config) Result {
	const name = "Remote speech API"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Transcription.PreferRemote {
		return Result{Name: name, Passed: true, Detail: "Disabled (local transcription only)"}
	}
	if strings.TrimSpace(cfg.Transcription.RemoteAPIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return CheckRemoteSpeech(context.Background(), cfg)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the pipeline shells out
// to. The CLI status command renders the result; the pipeline itself treats
// a missing binary as a per-stage failure instead.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio and subtitle extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for container inspection",
		},
		{
			Name:        "Whisper",
			Command:     cfg.WhisperBinary(),
			Description: "Required for local transcription",
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.YtDlpBinary(),
			Description: "Required for the fetch command",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}

// summarizeRemoteError produces a short summary for health check failures.
func summarizeRemoteError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (remote API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (remote API unreachable)"
	}
	return err.Error()
}
