package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "ALBUM_CONFIG"

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns a commented configuration file with every default.
func SampleConfig() string { return sampleConfig }

// Pipeline holds stage tuning.
type Pipeline struct {
	AnalyzeConcurrency    int     `toml:"analyze_concurrency"`
	BackgroundConcurrency int     `toml:"background_concurrency"`
	PlannerRetries        int     `toml:"planner_retries"`
	PlannerBackoffSeconds int     `toml:"planner_backoff_seconds"`
	WordsPerLine          int     `toml:"words_per_line"`
	JPEGQuality           int     `toml:"jpeg_quality"`
	ThumbnailMaxDimension int     `toml:"thumbnail_max_dimension"`
	DefaultFormat         string  `toml:"default_format"`
	BleedMM               float64 `toml:"bleed_mm"`
	JobTimeoutMinutes     int     `toml:"job_timeout_minutes"`
}

// Gemini holds AI provider settings. APIKey is normally left empty in files
// and supplied through GEMINI_API_KEY or SSM.
type Gemini struct {
	APIKey             string  `toml:"api_key"`
	TextModel          string  `toml:"text_model"`
	VisionModel        string  `toml:"vision_model"`
	ImageModel         string  `toml:"image_model"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
	Burst              int     `toml:"burst"`
	BackgroundsEnabled bool    `toml:"backgrounds_enabled"`
}

// Fetch holds photo download settings.
type Fetch struct {
	TimeoutSeconds  int   `toml:"timeout_seconds"`
	CacheTTLMinutes int   `toml:"cache_ttl_minutes"`
	MaxBytes        int64 `toml:"max_bytes"`
}

// AWS names deployed resources.
type AWS struct {
	Bucket         string `toml:"bucket"`
	Table          string `toml:"table"`
	WorkerFunction string `toml:"worker_function"`
	GeminiKeyParam string `toml:"gemini_key_param"`
	PresignMinutes int    `toml:"presign_minutes"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full pipeline configuration.
//
// Sections:
//   - Pipeline: concurrency, retries and rendering
//   - Gemini: models, pacing and the background switch
//   - Fetch: photo download timeout, cache and size cap
//   - AWS: bucket, table, worker function and SSM parameter
//   - Logging: level and format
type Config struct {
	Pipeline Pipeline `toml:"pipeline"`
	Gemini   Gemini   `toml:"gemini"`
	Fetch    Fetch    `toml:"fetch"`
	AWS      AWS      `toml:"aws"`
	Logging  Logging  `toml:"logging"`
}

// Load builds the configuration. An empty path falls back to $ALBUM_CONFIG;
// a path that does not exist is not an error. It reports whether a file was
// read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	loaded := false
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, false, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, false, fmt.Errorf("parse config %s: %w", path, err)
			}
			loaded = true
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, loaded, nil
}

// PlannerBackoff returns the fixed delay between planner attempts.
func (c *Config) PlannerBackoff() time.Duration {
	return time.Duration(c.Pipeline.PlannerBackoffSeconds) * time.Second
}

// JobTimeout returns the wall-clock ceiling for a job.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.Pipeline.JobTimeoutMinutes) * time.Minute
}

// FetchTimeout returns the per-request photo download timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long fetched photos stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Fetch.CacheTTLMinutes) * time.Minute
}

// PresignExpiry returns the lifetime of result download URLs.
func (c *Config) PresignExpiry() time.Duration {
	return time.Duration(c.AWS.PresignMinutes) * time.Minute
}
