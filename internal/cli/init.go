package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/auth"
	"github.com/fpang/photo-album-pipeline/internal/chat"
	"github.com/fpang/photo-album-pipeline/internal/config"
)

// InitGemini resolves the API key and builds the Gemini adapter with the
// configured models. Call metrics are discarded since the CLI has no log
// collector. Exits fatally on failure.
func InitGemini(ctx context.Context, cfg *config.Config) *chat.Gemini {
	apiKey, err := auth.GetAPIKey(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to retrieve API key (use --no-ai to run offline)")
	}

	client, err := chat.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	log.Info().Msg("Gemini client initialized")

	return chat.New(client, chat.Models{
		Text:   cfg.Gemini.TextModel,
		Vision: cfg.Gemini.VisionModel,
		Image:  cfg.Gemini.ImageModel,
	}, io.Discard)
}
