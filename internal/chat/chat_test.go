package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/analyzer"
	"github.com/fpang/photo-album-pipeline/internal/background"
	"github.com/fpang/photo-album-pipeline/internal/storyboard"
)

var (
	_ analyzer.Classifier      = (*Gemini)(nil)
	_ storyboard.TextGenerator = (*Gemini)(nil)
	_ background.Synthesizer   = (*Gemini)(nil)
)

type fakeModels struct {
	text      string
	imagePart *genai.Blob
	images    *genai.GenerateImagesResponse
	err       error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	prompt   string
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 40,
		},
	}
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	if f.err != nil {
		return nil, f.err
	}
	if f.imagePart != nil {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{InlineData: f.imagePart}}}}},
		}, nil
	}
	return textResponse(f.text), nil
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.model, f.prompt = model, prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

func TestClassify(t *testing.T) {
	f := &fakeModels{text: "```json\n" + `{"content": "Two people cutting a cake", "emotion": "joyful", "type": "key_moment", "quality": "excellent", "suggestedSlot": "landscape"}` + "\n```"}
	var metricsOut bytes.Buffer
	g := newWithAPI(f, Models{Vision: "vision-model"}, &metricsOut)

	photo := album.PhotoInput{ID: "p1", Width: 3000, Height: 2000}
	got, err := g.Classify(context.Background(), photo, []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got.Type != album.TypeKeyMoment || got.Quality != album.QualityExcellent || got.SuggestedSlot != album.SlotLandscape {
		t.Errorf("analysis = %+v", got)
	}
	if f.model != "vision-model" {
		t.Errorf("model = %q", f.model)
	}
	parts := f.contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/jpeg" {
		t.Errorf("expected inline image then prompt, got %d parts", len(parts))
	}
	if f.config.ResponseMIMEType != "application/json" || f.config.SystemInstruction == nil {
		t.Errorf("config = %+v", f.config)
	}
	if !strings.Contains(metricsOut.String(), `"GeminiApiCalls":1`) {
		t.Errorf("metrics not emitted: %s", metricsOut.String())
	}
}

func TestClassify_Errors(t *testing.T) {
	g := newWithAPI(&fakeModels{err: errors.New("quota")}, Models{}, io.Discard)
	if _, err := g.Classify(context.Background(), album.PhotoInput{ID: "p"}, nil, "image/jpeg"); err == nil {
		t.Error("expected API error")
	}

	g = newWithAPI(&fakeModels{text: "I cannot see the photo."}, Models{}, io.Discard)
	if _, err := g.Classify(context.Background(), album.PhotoInput{ID: "p"}, nil, "image/jpeg"); err == nil {
		t.Error("expected parse error for prose response")
	}
}

func TestGenerateJSON(t *testing.T) {
	f := &fakeModels{text: `{"pages": []}`}
	g := newWithAPI(f, Models{Text: "text-model"}, io.Discard)

	got, err := g.GenerateJSON(context.Background(), "system text", "plan this")
	if err != nil || got != `{"pages": []}` {
		t.Fatalf("GenerateJSON() = %q, %v", got, err)
	}
	if f.model != "text-model" || f.contents[0].Parts[0].Text != "plan this" {
		t.Errorf("request = %s %+v", f.model, f.contents[0].Parts[0])
	}
	if f.config.SystemInstruction.Parts[0].Text != "system text" {
		t.Errorf("system instruction not passed")
	}

	empty := newWithAPI(&fakeModels{text: ""}, Models{}, io.Discard)
	if _, err := empty.GenerateJSON(context.Background(), "s", "p"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestSynthesize_Imagen(t *testing.T) {
	f := &fakeModels{images: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte("png"), MIMEType: "image/png"}}},
	}}
	g := newWithAPI(f, Models{Image: ModelImagen4}, io.Discard)

	data, mime, err := g.Synthesize(context.Background(), "soft watercolor paper")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(data) != "png" || mime != "image/png" || f.prompt != "soft watercolor paper" {
		t.Errorf("got %q %q, prompt %q", data, mime, f.prompt)
	}

	filtered := newWithAPI(&fakeModels{images: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{}, RAIFilteredReason: "safety"}},
	}}, Models{Image: ModelImagen4}, io.Discard)
	if _, _, err := filtered.Synthesize(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "safety") {
		t.Errorf("filtered err = %v", err)
	}

	none := newWithAPI(&fakeModels{images: &genai.GenerateImagesResponse{}}, Models{Image: ModelImagen4}, io.Discard)
	if _, _, err := none.Synthesize(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("empty err = %v", err)
	}
}

func TestSynthesize_GeminiImageModel(t *testing.T) {
	f := &fakeModels{imagePart: &genai.Blob{MIMEType: "image/jpeg", Data: []byte("jpg")}}
	g := newWithAPI(f, Models{Image: ModelGemini3ProImage}, io.Discard)

	data, mime, err := g.Synthesize(context.Background(), "linen texture")
	if err != nil || string(data) != "jpg" || mime != "image/jpeg" {
		t.Fatalf("Synthesize() = %q %q %v", data, mime, err)
	}
	if f.model != ModelGemini3ProImage || len(f.config.ResponseModalities) != 1 || f.config.ResponseModalities[0] != "IMAGE" {
		t.Errorf("request model %q config %+v", f.model, f.config)
	}
}

func TestNewWithAPI_Defaults(t *testing.T) {
	g := newWithAPI(&fakeModels{}, Models{}, io.Discard)
	if g.models != DefaultModels() {
		t.Errorf("models = %+v, want defaults", g.models)
	}
}

func TestNew_MetricsWriter(t *testing.T) {
	client, err := NewClient(context.Background(), "test-key")
	if err != nil {
		t.Fatal(err)
	}
	var metricsOut bytes.Buffer
	g := New(client, Models{Text: "text-model"}, &metricsOut)
	if g.metricsOut != &metricsOut {
		t.Error("metrics writer not kept")
	}
	if g.models.Text != "text-model" || g.models.Vision != DefaultModels().Vision {
		t.Errorf("models = %+v", g.models)
	}

	g.api = &fakeModels{text: `{"ok":true}`}
	if _, err := g.GenerateJSON(context.Background(), "sys", "prompt"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(metricsOut.String(), `"Operation":"storyboard"`) {
		t.Errorf("metrics not written to the given writer: %q", metricsOut.String())
	}
}
