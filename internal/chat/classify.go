package chat

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/assets"
	"github.com/fpang/photo-album-pipeline/internal/jsonutil"
)

// Classify sends one thumbnail to the vision model and decodes the analysis
// record. Enum values are passed through as returned; the analyzer
// normalizes them.
func (g *Gemini) Classify(ctx context.Context, photo album.PhotoInput, thumb []byte, mimeType string) (album.Analysis, error) {
	prompt := fmt.Sprintf("Photo %s, %dx%d pixels. Classify it.", photo.ID, photo.Width, photo.Height)
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: thumb}},
			{Text: prompt},
		},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(assets.ClassifySystemPrompt),
		ResponseMIMEType:  "application/json",
	}

	text, err := g.generateText(ctx, "classify", g.models.Vision, contents, config)
	if err != nil {
		return album.Analysis{}, err
	}
	analysis, err := jsonutil.ParseJSON[album.Analysis](text)
	if err != nil {
		return album.Analysis{}, fmt.Errorf("classify %s: %w", photo.ID, err)
	}
	return analysis, nil
}
