package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{Index: 0, CodecType: "video"},
			{Index: 1, CodecType: "audio"},
			{Index: 2, CodecType: "subtitle", Tags: Tags{Language: "eng"}},
			{Index: 3, CodecType: "subtitle", Tags: Tags{Language: "zho"}},
		},
		Format: Format{Duration: "123.45"},
	}

	subs := result.SubtitleStreams()
	if len(subs) != 2 {
		t.Fatalf("expected 2 subtitle streams, got %d", len(subs))
	}
	if subs[0].Index != 2 || subs[1].Index != 3 {
		t.Fatalf("expected absolute indices preserved, got %d and %d", subs[0].Index, subs[1].Index)
	}
	if subs[1].Tags.Language != "zho" {
		t.Fatalf("unexpected language tag: %q", subs[1].Tags.Language)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if !result.HasAudio() {
		t.Fatal("expected HasAudio to be true")
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationSecondsInvalid(t *testing.T) {
	for _, value := range []string{"", "  ", "abc", "-3"} {
		result := Result{Format: Format{Duration: value}}
		if got := result.DurationSeconds(); got != 0 {
			t.Fatalf("expected 0 for %q, got %v", value, got)
		}
	}
}

func TestInspectParsesStubOutput(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffprobe")
	script := `#!/bin/sh
cat <<'EOF'
{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"},{"index":1,"codec_type":"subtitle","codec_name":"subrip","tags":{"language":"eng"}}],"format":{"filename":"sample.mp4","nb_streams":2,"duration":"10.0","format_name":"mov,mp4"}}
EOF
exit 0
`
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), stub, filepath.Join(binDir, "sample.mp4"))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if result.Format.NBStreams != 2 {
		t.Fatalf("unexpected stream count: %d", result.Format.NBStreams)
	}
	subs := result.SubtitleStreams()
	if len(subs) != 1 || subs[0].CodecName != "subrip" {
		t.Fatalf("unexpected subtitle streams: %#v", subs)
	}
	if result.HasAudio() {
		t.Fatal("expected no audio streams")
	}
}

func TestInspectReportsFailure(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffprobe")
	script := "#!/bin/sh\necho 'sample.mp4: No such file or directory' >&2\nexit 1\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if _, err := Inspect(context.Background(), stub, "missing.mp4"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
