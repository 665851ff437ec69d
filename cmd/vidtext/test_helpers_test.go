package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidtext/internal/config"
	"vidtext/internal/history"
	"vidtext/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *history.Store
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	// Blank values are skipped during config loading, so these shield the
	// tests from API keys present in the caller's environment.
	t.Setenv("VIDTEXT_SPEECH_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      testsupport.MustOpenHistory(t, cfg),
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func makeStubExecutables(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create stub bin dir: %v", err)
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		var script string
		switch name {
		case "yt-dlp":
			script = `#!/bin/sh
if [ "$1" = "--version" ]; then
    echo "2025.08.01"
    exit 0
fi
for arg in "$@"; do
    if [ "$arg" = "--dump-json" ]; then
        echo '{"id":"abc123","title":"Sample Video","uploader":"Example Channel","duration":212,"webpage_url":"https://example.com/videos/abc123","ext":"mp4"}'
        exit 0
    fi
done
exit 0
`
		default:
			script = "#!/bin/sh\nexit 0\n"
		}
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
}

func seedRun(t *testing.T, env *cliTestEnv, source string, status history.Status, mutate func(*history.Run)) *history.Run {
	t.Helper()
	ctx := context.Background()
	run, err := env.store.StartRun(ctx, source, "")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	run.Status = status
	if mutate != nil {
		mutate(run)
	}
	if err := env.store.UpdateRun(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}
	return run
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
