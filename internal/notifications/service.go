package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"vidtext/internal/config"
)

const userAgent = "vidtext/0.1.0"

// Service defines the notification surface exposed to pipeline and batch
// components. Implementations must be safe for concurrent use.
type Service interface {
	NotifyRunCompleted(ctx context.Context, source, method string, subtitleCount int) error
	NotifyRunFailed(ctx context.Context, source string, err error) error
	NotifyBatchStarted(ctx context.Context, inputDir string, count int) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:    topic,
		client:      client,
		sendRuns:    cfg.Notifications.Runs,
		sendBatches: cfg.Notifications.Batches,
		sendErrors:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sendRuns    bool
	sendBatches bool
	sendErrors  bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, source, method string, subtitleCount int) error {
	if !n.sendRuns {
		return nil
	}
	name := filepath.Base(strings.TrimSpace(source))
	var detail string
	switch {
	case method != "" && subtitleCount > 0:
		detail = fmt.Sprintf("%s transcription, %d subtitle entries", method, subtitleCount)
	case method != "":
		detail = fmt.Sprintf("%s transcription", method)
	case subtitleCount > 0:
		detail = fmt.Sprintf("%d subtitle entries", subtitleCount)
	default:
		detail = "no text recovered"
	}
	data := payload{
		title:   "Vidtext - Run Complete",
		message: fmt.Sprintf("✅ Extracted: %s (%s)", name, detail),
		tags:    []string{"vidtext", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, source string, err error) error {
	if !n.sendRuns {
		return nil
	}
	name := filepath.Base(strings.TrimSpace(source))
	reason := "unknown"
	if err != nil {
		reason = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Vidtext - Run Failed",
		message:  fmt.Sprintf("❌ Failed: %s: %s", name, reason),
		tags:     []string{"vidtext", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, inputDir string, count int) error {
	if !n.sendBatches {
		return nil
	}
	data := payload{
		title:   "Vidtext - Batch Started",
		message: fmt.Sprintf("Started processing %d videos from %s", count, strings.TrimSpace(inputDir)),
		tags:    []string{"vidtext", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error {
	if !n.sendBatches {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if failed == 0 {
		title = "Vidtext - Batch Complete"
		message = fmt.Sprintf("Batch complete: %d videos processed in %s", succeeded, durationText)
	} else {
		title = "Vidtext - Batch Complete (with errors)"
		message = fmt.Sprintf("Batch complete: %d succeeded, %d failed in %s", succeeded, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"vidtext", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Vidtext - Error",
		message:  builder.String(),
		tags:     []string{"vidtext", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Vidtext - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"vidtext", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, string, int) error { return nil }

func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }

func (noopService) NotifyBatchStarted(context.Context, string, int) error { return nil }

func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
