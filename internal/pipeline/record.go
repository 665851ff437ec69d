package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"vidtext/internal/srt"
	"vidtext/internal/transcribe"
)

// ProcessedAtLayout is the human timestamp recorded inside artifacts.
const ProcessedAtLayout = "2006-01-02 15:04:05"

// FilenameTimestampLayout derives artifact filenames (audio_<ts>.wav,
// video_content_<ts>.json, video_text_<ts>.txt).
const FilenameTimestampLayout = "20060102_150405"

// TranscriptionRecord is the winning transcription attached to a record.
type TranscriptionRecord struct {
	Text   string
	Method transcribe.Method
}

// ContentRecord aggregates everything one run recovered from a video.
// Transcription is nil when audio extraction or both transcription backends
// failed. Subtitles is empty, never nil, when the container had no usable
// subtitle stream.
type ContentRecord struct {
	VideoPath     string
	RunID         string
	ProcessedAt   time.Time
	Transcription *TranscriptionRecord
	Subtitles     []srt.Entry
}

// SubtitleText returns the subtitle cue texts joined one per line.
func (r *ContentRecord) SubtitleText() string {
	return srt.JoinText(r.Subtitles)
}

type contentDocument struct {
	VideoPath           string      `json:"video_path"`
	ProcessingTime      string      `json:"processing_time"`
	RunID               string      `json:"run_id,omitempty"`
	Transcription       *string     `json:"transcription"`
	TranscriptionMethod string      `json:"transcription_method,omitempty"`
	Subtitles           []srt.Entry `json:"subtitles"`
	SubtitleText        string      `json:"subtitle_text,omitempty"`
}

func (r *ContentRecord) document() contentDocument {
	doc := contentDocument{
		VideoPath:      r.VideoPath,
		ProcessingTime: r.ProcessedAt.Format(ProcessedAtLayout),
		RunID:          r.RunID,
		Subtitles:      r.Subtitles,
	}
	if doc.Subtitles == nil {
		doc.Subtitles = []srt.Entry{}
	}
	if r.Transcription != nil {
		text := r.Transcription.Text
		doc.Transcription = &text
		doc.TranscriptionMethod = string(r.Transcription.Method)
	}
	if len(r.Subtitles) > 0 {
		doc.SubtitleText = r.SubtitleText()
	}
	return doc
}

// WriteJSON persists the structured artifact.
func (r *ContentRecord) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r.document(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal content record: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write content record: %w", err)
	}
	return nil
}

// WriteText persists the human-readable artifact.
func (r *ContentRecord) WriteText(path string) error {
	var b strings.Builder
	b.WriteString("=== VIDEO CONTENT EXTRACTION ===\n\n")
	fmt.Fprintf(&b, "Video: %s\n", r.VideoPath)
	fmt.Fprintf(&b, "Processed: %s\n\n", r.ProcessedAt.Format(ProcessedAtLayout))

	if r.Transcription != nil && r.Transcription.Text != "" {
		b.WriteString("=== TRANSCRIPTION ===\n")
		fmt.Fprintf(&b, "Method: %s\n\n", r.Transcription.Method)
		b.WriteString(r.Transcription.Text)
		b.WriteString("\n\n")
	}

	if len(r.Subtitles) > 0 {
		b.WriteString("=== SUBTITLES ===\n\n")
		b.WriteString(srt.FormatBlocks(r.Subtitles))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write text artifact: %w", err)
	}
	return nil
}
