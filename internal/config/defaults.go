package config

import "github.com/fpang/photo-album-pipeline/internal/document"

// Default model IDs.
const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "imagen-4.0-generate-001"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Pipeline: Pipeline{
			AnalyzeConcurrency:    3,
			BackgroundConcurrency: 2,
			PlannerRetries:        2,
			PlannerBackoffSeconds: 2,
			WordsPerLine:          6,
			JPEGQuality:           90,
			ThumbnailMaxDimension: 1024,
			DefaultFormat:         document.DefaultFormat,
			JobTimeoutMinutes:     15,
		},
		Gemini: Gemini{
			TextModel:          DefaultTextModel,
			VisionModel:        DefaultTextModel,
			ImageModel:         DefaultImageModel,
			RequestsPerSecond:  2,
			Burst:              3,
			BackgroundsEnabled: true,
		},
		Fetch: Fetch{
			TimeoutSeconds:  30,
			CacheTTLMinutes: 30,
			MaxBytes:        50 << 20,
		},
		AWS: AWS{
			GeminiKeyParam: "/photo-album/prod/gemini-api-key",
			PresignMinutes: 60,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
