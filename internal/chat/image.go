package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/photo-album-pipeline/internal/metrics"
)

// Synthesize renders prompt to a square image. Imagen models go through
// GenerateImages; other models are asked for an IMAGE response part.
func (g *Gemini) Synthesize(ctx context.Context, prompt string) ([]byte, string, error) {
	start := time.Now()
	var (
		data     []byte
		mimeType string
		err      error
	)
	if strings.HasPrefix(g.models.Image, "imagen") {
		data, mimeType, err = g.imagen(ctx, prompt)
	} else {
		data, mimeType, err = g.geminiImage(ctx, prompt)
	}

	m := g.recorder("background").
		Since(metrics.GeminiAPILatencyMs, start).
		Count(metrics.GeminiAPICalls)
	if err != nil {
		m.Count(metrics.GeminiAPIErrors)
	}
	m.Flush()

	if err != nil {
		return nil, "", err
	}
	log.Debug().
		Str("model", g.models.Image).
		Str("mime", mimeType).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Background image generated")
	return data, mimeType, nil
}

func (g *Gemini) imagen(ctx context.Context, prompt string) ([]byte, string, error) {
	resp, err := g.api.GenerateImages(ctx, g.models.Image, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, "", fmt.Errorf("generate images: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, "", fmt.Errorf("background: %w", ErrEmptyResponse)
	}
	img := resp.GeneratedImages[0]
	if len(img.Image.ImageBytes) == 0 {
		if img.RAIFilteredReason != "" {
			return nil, "", fmt.Errorf("background filtered: %s", img.RAIFilteredReason)
		}
		return nil, "", fmt.Errorf("background: %w", ErrEmptyResponse)
	}
	mimeType := img.Image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return img.Image.ImageBytes, mimeType, nil
}

func (g *Gemini) geminiImage(ctx context.Context, prompt string) ([]byte, string, error) {
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
	resp, err := g.api.GenerateContent(ctx, g.models.Image, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("generate image content: %w", err)
	}
	if resp != nil {
		for _, c := range resp.Candidates {
			if c.Content == nil {
				continue
			}
			for _, part := range c.Content.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					return part.InlineData.Data, part.InlineData.MIMEType, nil
				}
			}
		}
	}
	return nil, "", fmt.Errorf("background: %w", ErrEmptyResponse)
}
