package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"vidtext/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRemoteSpeech_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithRemoteSpeech("good-key", srv.URL))
	result := CheckRemoteSpeech(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckRemoteSpeech_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithRemoteSpeech("bad-key", srv.URL))
	result := CheckRemoteSpeech(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
}

func TestCheckRemoteSpeech_MissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckRemoteSpeech(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestCheckRemoteSpeechFromConfig_Disabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckRemoteSpeechFromConfig(cfg)
	if !result.Passed {
		t.Fatalf("expected disabled remote to pass, got: %s", result.Detail)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe", "whisper"))

	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 dependency statuses, got %d", len(statuses))
	}
	byName := map[string]bool{}
	for _, status := range statuses {
		byName[status.Name] = status.Available
	}
	for _, name := range []string{"FFmpeg", "FFprobe", "Whisper"} {
		if !byName[name] {
			t.Fatalf("expected %s to be available", name)
		}
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_LocalOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 directory checks, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesRemoteWhenPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithRemoteSpeech("key", srv.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	found := false
	for _, r := range results {
		if r.Name == "Remote speech API" {
			found = true
			if !r.Passed {
				t.Errorf("remote speech check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected remote speech check in results")
	}
}
