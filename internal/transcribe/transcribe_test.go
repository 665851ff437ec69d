package transcribe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vidtext/internal/media/ffmpeg"
	"vidtext/internal/services/whisper"
)

type fakeLocal struct {
	texts map[string]string // keyed by input base name; missing key means no speech
	err   error
	calls []string
}

func (f *fakeLocal) Transcribe(ctx context.Context, audioPath, outputDir, language string) (whisper.Result, error) {
	f.calls = append(f.calls, filepath.Base(audioPath))
	if f.err != nil {
		return whisper.Result{}, f.err
	}
	text, ok := f.texts[filepath.Base(audioPath)]
	if !ok || text == "" {
		return whisper.Result{}, whisper.ErrNoSpeech
	}
	return whisper.Result{Text: text}, nil
}

type fakeRemote struct {
	text  string
	err   error
	calls int
}

func (f *fakeRemote) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeSegmenter struct {
	segments []string
	err      error
}

func (f *fakeSegmenter) SegmentAudio(ctx context.Context, req ffmpeg.AudioSegmentation) ([]string, error) {
	return f.segments, f.err
}

func TestTranscribePrefersRemote(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{"audio.wav": "local text"}}
	remote := &fakeRemote{text: "remote text"}
	svc := NewService(Config{PreferRemote: true}, local, remote, nil)

	result, err := svc.Transcribe(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodRemote || result.Text != "remote text" {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(local.calls) != 0 {
		t.Error("local engine should not run when remote succeeds")
	}
}

func TestTranscribeFallsBackToLocal(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{"audio.wav": "local text"}}
	remote := &fakeRemote{err: errors.New("speech request: http 503: upstream down")}
	svc := NewService(Config{PreferRemote: true}, local, remote, nil)

	result, err := svc.Transcribe(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodLocal || result.Text != "local text" {
		t.Errorf("unexpected result: %+v", result)
	}
	if remote.calls != 1 {
		t.Errorf("expected one remote attempt, got %d", remote.calls)
	}
}

func TestFallbackDeterminism(t *testing.T) {
	// A chain whose remote backend always fails must produce exactly what a
	// local-only chain produces for the same audio.
	failingRemote := &fakeRemote{err: errors.New("always down")}
	withRemote := NewService(Config{PreferRemote: true}, &fakeLocal{texts: map[string]string{"audio.wav": "same text"}}, failingRemote, nil)
	localOnly := NewService(Config{}, &fakeLocal{texts: map[string]string{"audio.wav": "same text"}}, nil, nil)

	got, err := withRemote.Transcribe(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := localOnly.Transcribe(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("fallback result diverged: got %+v, want %+v", got, want)
	}
}

func TestTranscribeRemoteNotPreferred(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{"audio.wav": "local text"}}
	remote := &fakeRemote{text: "remote text"}
	svc := NewService(Config{PreferRemote: false}, local, remote, nil)

	result, err := svc.Transcribe(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodLocal {
		t.Errorf("expected local method, got %s", result.Method)
	}
	if remote.calls != 0 {
		t.Error("remote backend should not run when not preferred")
	}
}

func TestTranscribeNoSpeech(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{}}
	svc := NewService(Config{}, local, nil, nil)

	_, err := svc.Transcribe(context.Background(), "silent.wav")
	if !errors.Is(err, whisper.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestTranscribeEngineFailure(t *testing.T) {
	local := &fakeLocal{err: errors.New("whisper: exit status 127")}
	svc := NewService(Config{}, local, nil, nil)

	_, err := svc.Transcribe(context.Background(), "audio.wav")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, whisper.ErrNoSpeech) {
		t.Fatal("engine failure must not be reported as no-speech")
	}
}

func TestTranscribeRejectsEmptyRemoteText(t *testing.T) {
	// A backend that "succeeds" with empty text must not be a silent success.
	local := &fakeLocal{texts: map[string]string{"audio.wav": "local text"}}
	remote := &fakeRemote{text: "   "}
	svc := NewService(Config{PreferRemote: true}, local, remote, nil)

	result, err := svc.Transcribe(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodLocal {
		t.Errorf("expected fallback to local, got %s", result.Method)
	}
}

func TestTranscribeValidation(t *testing.T) {
	svc := NewService(Config{}, &fakeLocal{}, nil, nil)
	if _, err := svc.Transcribe(context.Background(), "  "); err == nil {
		t.Error("expected error for empty audio path")
	}

	empty := NewService(Config{}, nil, nil, nil)
	if _, err := empty.Transcribe(context.Background(), "audio.wav"); err == nil {
		t.Error("expected error when no backends are configured")
	}
}

func TestTranscribeSegmentsLongAudio(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{
		"segment_000.wav": "first chunk",
		"segment_002.wav": "third chunk",
	}}
	svc := NewService(Config{SegmentSeconds: 60}, local, nil, nil)
	svc.WithSegmenter(&fakeSegmenter{segments: []string{
		"/work/segment_000.wav",
		"/work/segment_001.wav", // silent chunk, skipped
		"/work/segment_002.wav",
	}})

	result, err := svc.Transcribe(context.Background(), "long.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "first chunk third chunk" {
		t.Errorf("unexpected joined text: %q", result.Text)
	}
	if len(local.calls) != 3 {
		t.Errorf("expected 3 engine calls, got %d", len(local.calls))
	}
}

func TestTranscribeSegmentationFailureFallsBackToWholeFile(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{"long.wav": "whole file text"}}
	svc := NewService(Config{SegmentSeconds: 60}, local, nil, nil)
	svc.WithSegmenter(&fakeSegmenter{err: errors.New("segment audio: boom")})

	result, err := svc.Transcribe(context.Background(), "long.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "whole file text" {
		t.Errorf("unexpected text: %q", result.Text)
	}
	if len(local.calls) != 1 || local.calls[0] != "long.wav" {
		t.Errorf("expected single whole-file call, got %v", local.calls)
	}
}

func TestTranscribeAllSegmentsSilent(t *testing.T) {
	local := &fakeLocal{texts: map[string]string{}}
	svc := NewService(Config{SegmentSeconds: 60}, local, nil, nil)
	svc.WithSegmenter(&fakeSegmenter{segments: []string{"/work/segment_000.wav", "/work/segment_001.wav"}})

	_, err := svc.Transcribe(context.Background(), "long.wav")
	if !errors.Is(err, whisper.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}
