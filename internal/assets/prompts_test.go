package assets

import (
	"strings"
	"testing"
)

func TestStaticPromptsEmbedded(t *testing.T) {
	for name, p := range map[string]string{
		"classify":   ClassifySystemPrompt,
		"storyboard": StoryboardSystemPrompt,
	} {
		if !strings.Contains(p, "JSON") {
			t.Errorf("%s prompt missing JSON instructions", name)
		}
	}
}

func TestRenderStoryboardRequest(t *testing.T) {
	out, err := RenderStoryboardRequest(StoryboardRequest{
		Occasion:  "wedding",
		Style:     "romantic",
		PageCount: 12,
		Answers:   []Answer{{Key: "names", Value: "Ana & Ben"}},
		Photos: []PhotoLine{
			{ID: "p1", Orientation: "portrait", Type: "key_moment", Quality: "good", Emotion: "joyful", Content: "first kiss", TakenAt: "2024-06-01"},
		},
		Groupings: [][]string{{"p1", "p2"}},
	})
	if err != nil {
		t.Fatalf("RenderStoryboardRequest() error: %v", err)
	}
	for _, want := range []string{"Occasion: wedding", "at most 12 pages", "back_cover", "names: Ana & Ben", "id=p1", "taken=2024-06-01", "group 0: p1, p2"} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}

	sample, err := RenderStoryboardRequest(StoryboardRequest{Occasion: "birthday", Style: "playful", IsSample: true})
	if err != nil {
		t.Fatalf("RenderStoryboardRequest() error: %v", err)
	}
	if !strings.Contains(sample, "short preview") || !strings.Contains(sample, "as many pages as the photos need") {
		t.Errorf("sample prompt:\n%s", sample)
	}
}

func TestRenderBackgroundPrompt(t *testing.T) {
	out := RenderBackgroundPrompt(BackgroundPrompt{Style: "vintage", Occasion: "anniversary", Mood: "nostalgic", Detail: "warm sepia paper"})
	for _, want := range []string{"vintage", "anniversary", "nostalgic", "warm sepia paper.", "No text"} {
		if !strings.Contains(out, want) {
			t.Errorf("background prompt missing %q: %s", want, out)
		}
	}
}
