package chat

import (
	"context"

	"google.golang.org/genai"
)

// GenerateJSON asks the text model for a JSON answer to prompt under the
// given system instruction. The raw text is returned; callers parse it.
func (g *Gemini) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(system),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   32768,
	}
	return g.generateText(ctx, "storyboard", g.models.Text, contents, config)
}
