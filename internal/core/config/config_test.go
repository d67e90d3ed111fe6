package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsUseBuiltInSlides(t *testing.T) {
	cfg, err := Load("")
	requireNoError(t, err)

	if cfg.Server.Port != 8080 || cfg.Server.Mode != "release" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Dataset.SourceType != "http" || cfg.Dataset.Location() != cfg.Dataset.URL {
		t.Fatalf("unexpected dataset defaults: %+v", cfg.Dataset)
	}
	if cfg.Dataset.LoadTimeout() != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.Dataset.LoadTimeout())
	}
	if cfg.Slides.Transition() != 750*time.Millisecond {
		t.Fatalf("expected 750ms transition, got %s", cfg.Slides.Transition())
	}
	if cfg.SlideLoading.ConfigDir != "" {
		t.Fatalf("expected built-in slides, got dir %q", cfg.SlideLoading.ConfigDir)
	}
	if len(cfg.SlideLoading.Definitions) != 3 {
		t.Fatalf("expected 3 built-in slides, got %d", len(cfg.SlideLoading.Definitions))
	}
}

func TestLoad_FileSourceAndSlideDirectory(t *testing.T) {
	root := t.TempDir()
	slidesDir := filepath.Join(root, "slides")
	requireNoError(t, os.MkdirAll(slidesDir, 0o755))
	requireNoError(t, os.WriteFile(filepath.Join(slidesDir, "runtime.yaml"), []byte(`
name: runtime
kind: histogram
field: runtime
domain: [0, 240]
bins: 24
`), 0o644))

	csvPath := filepath.Join(root, "films.csv")
	cfgPath := filepath.Join(root, "filmslides.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
server:
  port: 9090
  host: "127.0.0.1"
  mode: "debug"
dataset:
  source_type: "file"
  path: "%s"
  timeout: "3s"
slides:
  config_dir: "%s"
  transition_ms: 0
session:
  capacity: 10
  shards: 2
log:
  level: "debug"
`, csvPath, slidesDir)), 0o644))

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	if cfg.Dataset.Location() != csvPath {
		t.Fatalf("expected location %q, got %q", csvPath, cfg.Dataset.Location())
	}
	if cfg.Slides.Transition() != 0 {
		t.Fatalf("expected zero transition, got %s", cfg.Slides.Transition())
	}
	if len(cfg.SlideLoading.Definitions) != 1 || cfg.SlideLoading.Definitions[0].Name != "runtime" {
		t.Fatalf("expected the runtime slide only, got %+v", cfg.SlideLoading.Definitions)
	}
	if cfg.Log.SlogLevel().String() != "DEBUG" {
		t.Fatalf("expected debug level, got %s", cfg.Log.SlogLevel())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "filmslides.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
server:
  port: 9090
`), 0o644))

	t.Setenv("FILMSLIDES_SERVER__PORT", "7070")
	t.Setenv("FILMSLIDES_DATASET__SOURCE_TYPE", "s3")
	t.Setenv("FILMSLIDES_DATASET__BUCKET", "films")
	t.Setenv("FILMSLIDES_DATASET__KEY", "netflix/originals.csv")
	t.Setenv("FILMSLIDES_DATASET__S3__ENDPOINT", "http://localhost:9000")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Dataset.Location() != "netflix/originals.csv" {
		t.Fatalf("expected object key location, got %q", cfg.Dataset.Location())
	}
	if got := cfg.Dataset.S3Options().Endpoint; got != "http://localhost:9000" {
		t.Fatalf("expected s3 endpoint, got %q", got)
	}
}

func TestLoad_InvalidConfigFailsStartup(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"port", "server:\n  port: -1\n", "invalid server.port"},
		{"mode", "server:\n  mode: \"test\"\n", "invalid server.mode"},
		{"source type", "dataset:\n  source_type: \"ftp\"\n", "unsupported dataset.source_type"},
		{"file without path", "dataset:\n  source_type: \"file\"\n", "dataset.path is required"},
		{"s3 without bucket", "dataset:\n  source_type: \"s3\"\n  key: \"a.csv\"\n", "dataset.bucket and dataset.key"},
		{"timeout", "dataset:\n  timeout: \"soon\"\n", "invalid dataset.timeout"},
		{"transition", "slides:\n  transition_ms: -5\n", "slides.transition_ms"},
		{"capacity", "session:\n  capacity: 0\n", "session.capacity"},
		{"log level", "log:\n  level: \"loud\"\n", "invalid log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "filmslides.yaml")
			requireNoError(t, os.WriteFile(cfgPath, []byte(tt.yaml), 0o644))

			_, err := Load(cfgPath)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_InvalidSlideFileFailsStartup(t *testing.T) {
	root := t.TempDir()
	slidesDir := filepath.Join(root, "slides")
	requireNoError(t, os.MkdirAll(slidesDir, 0o755))
	requireNoError(t, os.WriteFile(filepath.Join(slidesDir, "pie.yaml"), []byte(`
name: pie
kind: pie
`), 0o644))

	cfgPath := filepath.Join(root, "filmslides.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
slides:
  config_dir: "%s"
`, slidesDir)), 0o644))

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "failed to load slide definitions") {
		t.Fatalf("expected slide load error, got %v", err)
	}
}

func TestLoad_MissingFileFailsStartup(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
		t.Fatalf("expected config file error, got %v", err)
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
