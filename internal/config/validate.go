package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fpang/photo-album-pipeline/internal/document"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePipeline() error {
	p := c.Pipeline
	if p.AnalyzeConcurrency < 1 {
		return errors.New("pipeline.analyze_concurrency must be at least 1")
	}
	if p.BackgroundConcurrency < 1 {
		return errors.New("pipeline.background_concurrency must be at least 1")
	}
	if p.PlannerRetries < 0 {
		return errors.New("pipeline.planner_retries must not be negative")
	}
	if p.PlannerBackoffSeconds < 0 {
		return errors.New("pipeline.planner_backoff_seconds must not be negative")
	}
	if p.WordsPerLine < 1 {
		return errors.New("pipeline.words_per_line must be at least 1")
	}
	if p.JPEGQuality < 1 || p.JPEGQuality > 100 {
		return errors.New("pipeline.jpeg_quality must be between 1 and 100")
	}
	if p.BleedMM < 0 {
		return errors.New("pipeline.bleed_mm must not be negative")
	}
	if p.JobTimeoutMinutes < 1 {
		return errors.New("pipeline.job_timeout_minutes must be at least 1")
	}
	if _, err := document.Lookup(p.DefaultFormat); err != nil {
		return fmt.Errorf("pipeline.default_format: %w (known: %s)", err, strings.Join(document.Names(), ", "))
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.RequestsPerSecond <= 0 {
		return errors.New("gemini.requests_per_second must be positive")
	}
	if c.Gemini.Burst < 1 {
		return errors.New("gemini.burst must be at least 1")
	}
	if c.Gemini.TextModel == "" || c.Gemini.VisionModel == "" {
		return errors.New("gemini.text_model and gemini.vision_model must be set")
	}
	if c.Gemini.BackgroundsEnabled && c.Gemini.ImageModel == "" {
		return errors.New("gemini.image_model must be set when backgrounds are enabled")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds < 1 {
		return errors.New("fetch.timeout_seconds must be at least 1")
	}
	if c.Fetch.CacheTTLMinutes < 0 {
		return errors.New("fetch.cache_ttl_minutes must not be negative")
	}
	if c.Fetch.MaxBytes < 1 {
		return errors.New("fetch.max_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}
