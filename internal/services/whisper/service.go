package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command is the default local speech engine binary.
const Command = "whisper"

// DefaultModel is the engine model used when none is configured.
const DefaultModel = "turbo"

// ErrNoSpeech reports that the engine ran to completion but recognized no
// speech. Callers log this differently from an engine failure: the audio is
// unintelligible, the tool is fine.
var ErrNoSpeech = errors.New("no recognizable speech in audio")

// Config captures runtime settings for the local speech engine.
type Config struct {
	// Binary is the whisper executable; empty resolves "whisper" via PATH.
	Binary string
	// Model selects the engine model (e.g. "turbo", "base").
	Model string
}

// Service invokes the local whisper CLI for speech-to-text.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a local transcription service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Binary returns the engine executable the service will invoke.
func (s *Service) Binary() string {
	if bin := strings.TrimSpace(s.cfg.Binary); bin != "" {
		return bin
	}
	return Command
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Result contains the engine output for one audio file.
type Result struct {
	// Text is the recognized speech, segment texts joined in order.
	Text string
	// JSONPath is the engine's JSON output file.
	JSONPath string
}

// Transcribe runs the whisper CLI against an audio file and loads the
// recognized text from its JSON output. outputDir defaults to the audio
// file's directory. A run that completes without recognizing any speech
// returns ErrNoSpeech.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir, language string) (Result, error) {
	var result Result

	if strings.TrimSpace(audioPath) == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(audioPath, outputDir, language)
	if err := s.run(ctx, s.Binary(), args...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	result.JSONPath = filepath.Join(outputDir, baseName+".json")

	text, err := loadTranscriptText(result.JSONPath)
	if err != nil {
		return result, fmt.Errorf("whisper output: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return result, ErrNoSpeech
	}
	result.Text = strings.TrimSpace(text)
	return result, nil
}

// buildArgs constructs the whisper CLI argument list.
func (s *Service) buildArgs(audioPath, outputDir, language string) []string {
	args := []string{
		audioPath,
		"--model", s.Model(),
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if lang := strings.TrimSpace(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment represents a transcribed segment from the engine's JSON output.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// whisperPayload is the JSON structure the whisper CLI writes.
type whisperPayload struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// LoadSegments loads timed segments from a whisper JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisper json: %w", err)
	}
	return payload.Segments, nil
}

// loadTranscriptText reads the recognized text from a whisper JSON file,
// preferring the top-level text and falling back to joining segment texts.
func loadTranscriptText(jsonPath string) (string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", err
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parse whisper json: %w", err)
	}
	if text := strings.TrimSpace(payload.Text); text != "" {
		return text, nil
	}
	var parts []string
	for _, seg := range payload.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
