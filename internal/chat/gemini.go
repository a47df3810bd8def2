// Package chat adapts the Gemini API to the capabilities the album pipeline
// consumes: photo classification, JSON storyboard generation and background
// image synthesis.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/photo-album-pipeline/internal/metrics"
)

// ErrEmptyResponse is returned when the model answers with no usable content.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// modelsAPI is the subset of genai.Models used here.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Gemini implements the pipeline's classifier, text generator and background
// synthesizer on one client.
type Gemini struct {
	api        modelsAPI
	models     Models
	metricsOut io.Writer
}

// NewClient creates a Gemini API client for apiKey.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return client, nil
}

// New returns a Gemini adapter. Empty model names take the defaults.
// Call metrics go to metricsOut in EMF form; nil means stdout.
func New(client *genai.Client, models Models, metricsOut io.Writer) *Gemini {
	return newWithAPI(client.Models, models, metricsOut)
}

func newWithAPI(api modelsAPI, models Models, metricsOut io.Writer) *Gemini {
	def := DefaultModels()
	if models.Text == "" {
		models.Text = def.Text
	}
	if models.Vision == "" {
		models.Vision = def.Vision
	}
	if models.Image == "" {
		models.Image = def.Image
	}
	return &Gemini{api: api, models: models, metricsOut: metricsOut}
}

func (g *Gemini) recorder(operation string) *metrics.Recorder {
	return metrics.For(g.metricsOut).Dimension("Operation", operation)
}

// generateText runs one GenerateContent call and returns the response text.
func (g *Gemini) generateText(ctx context.Context, operation, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	start := time.Now()
	resp, err := g.api.GenerateContent(ctx, model, contents, config)
	elapsed := time.Since(start)

	m := g.recorder(operation).
		Metric(metrics.GeminiAPILatencyMs, float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count(metrics.GeminiAPICalls)
	if err != nil {
		m.Count(metrics.GeminiAPIErrors)
	}
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric(metrics.GeminiInputTokens, float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount)
		m.Metric(metrics.GeminiOutputTokens, float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	m.Flush()

	if err != nil {
		log.Warn().Err(err).Str("operation", operation).Str("model", model).Dur("duration", elapsed).Msg("Gemini call failed")
		return "", fmt.Errorf("%s: generate content: %w", operation, err)
	}
	if resp == nil || resp.Text() == "" {
		return "", fmt.Errorf("%s: %w", operation, ErrEmptyResponse)
	}

	log.Debug().
		Str("operation", operation).
		Str("model", model).
		Int("response_length", len(resp.Text())).
		Dur("duration", elapsed).
		Msg("Gemini response received")
	return resp.Text(), nil
}

func systemInstruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}
