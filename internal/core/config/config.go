package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

// EnvPrefix is the prefix of environment overrides. FILMSLIDES_DATASET__URL
// sets dataset.url.
const EnvPrefix = "FILMSLIDES_"

// Config represents the top-level application config plus the resolved
// slide definitions.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Dataset DatasetConfig `koanf:"dataset"`
	Slides  SlidesConfig  `koanf:"slides"`
	Session SessionConfig `koanf:"session"`
	Log     LogConfig     `koanf:"log"`

	// SlideLoading is populated by Load after parsing slide files.
	SlideLoading SlideLoadingConfig `koanf:"-"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatasetConfig struct {
	SourceType string   `koanf:"source_type"` // http | file | s3
	URL        string   `koanf:"url"`
	Path       string   `koanf:"path"`
	Bucket     string   `koanf:"bucket"`
	Key        string   `koanf:"key"`
	Timeout    string   `koanf:"timeout"` // parsed and validated on startup
	SchemaPath string   `koanf:"schema_path"`
	S3         S3Config `koanf:"s3"`
}

type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
}

type SlidesConfig struct {
	ConfigDir    string `koanf:"config_dir"`
	TransitionMS int    `koanf:"transition_ms"`
	Width        int    `koanf:"width"`
	Height       int    `koanf:"height"`
}

type SessionConfig struct {
	Capacity int `koanf:"capacity"`
	Shards   int `koanf:"shards"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

type SlideLoadingConfig struct {
	ConfigDir   string
	Definitions []slides.Definition
	Repository  *slides.FileSystemRepository
}

// Location returns where the dataset is read from for the configured
// source type: a URL, a file path or an object key.
func (c DatasetConfig) Location() string {
	switch c.SourceType {
	case dataset.SourceFile:
		return c.Path
	case dataset.SourceS3:
		return c.Key
	default:
		return c.URL
	}
}

// LoadTimeout returns the parsed dataset.timeout.
func (c DatasetConfig) LoadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// S3Options returns the object store settings in the form the dataset package takes.
func (c DatasetConfig) S3Options() dataset.S3Config {
	return dataset.S3Config{
		Endpoint:        c.S3.Endpoint,
		Region:          c.S3.Region,
		AccessKeyID:     c.S3.AccessKey,
		SecretAccessKey: c.S3.SecretKey,
		UseSSL:          c.S3.UseSSL,
	}
}

// Transition returns the default redraw transition length.
func (c SlidesConfig) Transition() time.Duration {
	return time.Duration(c.TransitionMS) * time.Millisecond
}

// SlogLevel maps log.level onto a slog level.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Dataset.SourceType {
	case dataset.SourceHTTP:
		if strings.TrimSpace(c.Dataset.URL) == "" {
			return fmt.Errorf("dataset.url is required for source_type http")
		}
	case dataset.SourceFile:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			return fmt.Errorf("dataset.path is required for source_type file")
		}
	case dataset.SourceS3:
		if strings.TrimSpace(c.Dataset.Bucket) == "" || strings.TrimSpace(c.Dataset.Key) == "" {
			return fmt.Errorf("dataset.bucket and dataset.key are required for source_type s3")
		}
		if strings.TrimSpace(c.Dataset.S3.Endpoint) == "" {
			return fmt.Errorf("dataset.s3.endpoint is required for source_type s3")
		}
	default:
		return fmt.Errorf("unsupported dataset.source_type %q", c.Dataset.SourceType)
	}
	timeout, err := time.ParseDuration(c.Dataset.Timeout)
	if err != nil {
		return fmt.Errorf("invalid dataset.timeout %q: %w", c.Dataset.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("dataset.timeout must be > 0")
	}

	if c.Slides.TransitionMS < 0 {
		return fmt.Errorf("slides.transition_ms must be >= 0")
	}
	if c.Slides.Width < 100 || c.Slides.Height < 100 {
		return fmt.Errorf("slides.width and slides.height must be >= 100")
	}

	if c.Session.Capacity <= 0 {
		return fmt.Errorf("session.capacity must be > 0")
	}
	if c.Session.Shards <= 0 {
		return fmt.Errorf("session.shards must be > 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	return nil
}

// Load parses config from defaults, file and env, validates it, then loads
// and validates the slide definitions.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":          8080,
		"server.host":          "0.0.0.0",
		"server.mode":          "release",
		"dataset.source_type":  dataset.SourceHTTP,
		"dataset.url":          "https://LydiaBrothers.github.io/data/NetflixOriginals.csv",
		"dataset.timeout":      "10s",
		"dataset.s3.region":    "us-east-1",
		"slides.config_dir":    "",
		"slides.transition_ms": 750,
		"slides.width":         800,
		"slides.height":        500,
		"session.capacity":     1024,
		"session.shards":       16,
		"log.level":            "info",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, err := slides.NewFileSystemRepository(cfg.Slides.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load slide definitions: %w", err)
	}
	defs, err := repo.List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to list slide definitions: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no slide definitions found in %q", cfg.Slides.ConfigDir)
	}

	cfg.SlideLoading = SlideLoadingConfig{
		ConfigDir:   repo.Dir(),
		Definitions: defs,
		Repository:  repo,
	}
	return &cfg, nil
}
