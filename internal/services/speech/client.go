package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBaseURL points at the hosted transcription API.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the hosted transcription model.
	DefaultModel = "whisper-1"

	defaultHTTPTimeout = 30 * time.Second
)

// Config captures the runtime settings required to talk to the remote
// transcription API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible audio transcription API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a transcription client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = DefaultModel
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Model returns the remote model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("speech request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Transcribe uploads the audio file to the transcriptions endpoint and
// returns the recognized plain text. Any transport failure, non-2xx status,
// or empty response is an error; the caller decides whether to fall back.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("speech transcribe: api key required")
	}
	if strings.TrimSpace(audioPath) == "" {
		return "", errors.New("speech transcribe: audio path required")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("speech transcribe: open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("speech transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("speech transcribe: read audio: %w", err)
	}
	fields := map[string]string{
		"model":           c.cfg.Model,
		"response_format": "text",
	}
	if lang := strings.TrimSpace(language); lang != "" {
		fields["language"] = lang
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("speech transcribe: build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("speech transcribe: build form: %w", err)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "audio", "transcriptions")
	if err != nil {
		return "", fmt.Errorf("speech transcribe: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("speech transcribe: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech transcribe: http error: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("speech transcribe: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &statusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return "", errors.New("speech transcribe: empty transcription")
	}
	return text, nil
}

// HealthCheck verifies the credential against the models endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("speech health: api key required")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models")
	if err != nil {
		return fmt.Errorf("speech health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("speech health: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speech health: http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
