package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv overrides fields from the environment. Unset variables leave the
// field alone; malformed numbers are errors.
func (c *Config) applyEnv() error {
	ints := []struct {
		env string
		dst *int
	}{
		{"ALBUM_ANALYZE_CONCURRENCY", &c.Pipeline.AnalyzeConcurrency},
		{"ALBUM_BACKGROUND_CONCURRENCY", &c.Pipeline.BackgroundConcurrency},
		{"ALBUM_PLANNER_RETRIES", &c.Pipeline.PlannerRetries},
		{"ALBUM_PLANNER_BACKOFF_SECONDS", &c.Pipeline.PlannerBackoffSeconds},
		{"ALBUM_WORDS_PER_LINE", &c.Pipeline.WordsPerLine},
		{"ALBUM_JPEG_QUALITY", &c.Pipeline.JPEGQuality},
		{"ALBUM_JOB_TIMEOUT_MINUTES", &c.Pipeline.JobTimeoutMinutes},
		{"ALBUM_GEMINI_BURST", &c.Gemini.Burst},
		{"ALBUM_FETCH_TIMEOUT_SECONDS", &c.Fetch.TimeoutSeconds},
		{"ALBUM_FETCH_CACHE_TTL_MINUTES", &c.Fetch.CacheTTLMinutes},
		{"ALBUM_PRESIGN_MINUTES", &c.AWS.PresignMinutes},
	}
	for _, f := range ints {
		v, ok := lookup(f.env)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		*f.dst = n
	}

	strs := []struct {
		env string
		dst *string
	}{
		{"ALBUM_DEFAULT_FORMAT", &c.Pipeline.DefaultFormat},
		{"ALBUM_TEXT_MODEL", &c.Gemini.TextModel},
		{"ALBUM_VISION_MODEL", &c.Gemini.VisionModel},
		{"ALBUM_IMAGE_MODEL", &c.Gemini.ImageModel},
		{"GEMINI_API_KEY", &c.Gemini.APIKey},
		{"ALBUM_BUCKET", &c.AWS.Bucket},
		{"ALBUM_TABLE", &c.AWS.Table},
		{"ALBUM_WORKER_FUNCTION", &c.AWS.WorkerFunction},
		{"SSM_API_KEY_PARAM", &c.AWS.GeminiKeyParam},
		{"ALBUM_LOG_LEVEL", &c.Logging.Level},
		{"ALBUM_LOG_FORMAT", &c.Logging.Format},
	}
	for _, f := range strs {
		if v, ok := lookup(f.env); ok {
			*f.dst = v
		}
	}

	if v, ok := lookup("ALBUM_BLEED_MM"); ok {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ALBUM_BLEED_MM: %w", err)
		}
		c.Pipeline.BleedMM = n
	}
	if v, ok := lookup("ALBUM_GEMINI_RPS"); ok {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ALBUM_GEMINI_RPS: %w", err)
		}
		c.Gemini.RequestsPerSecond = n
	}
	if v, ok := lookup("ALBUM_BACKGROUNDS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALBUM_BACKGROUNDS_ENABLED: %w", err)
		}
		c.Gemini.BackgroundsEnabled = b
	}
	return nil
}

func lookup(env string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(env))
	return v, v != ""
}
