package analyzer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/fpang/photo-album-pipeline/internal/album"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := m[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

type fakeClassifier struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]bool
	result album.Analysis
}

func (f *fakeClassifier) Classify(_ context.Context, photo album.PhotoInput, thumb []byte, mimeType string) (album.Analysis, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failOn[photo.ID] {
		return album.Analysis{}, errors.New("model unavailable")
	}
	if len(thumb) == 0 || mimeType != "image/jpeg" {
		return album.Analysis{}, errors.New("bad thumbnail")
	}
	return f.result, nil
}

func TestAnalyze_CompleteUnderFailures(t *testing.T) {
	fetcher := mapFetcher{
		"p1": pngBytes(t, 40, 20),
		"p2": pngBytes(t, 20, 40),
		"p3": []byte("corrupt"),
		"p5": pngBytes(t, 30, 30),
	}
	photos := []album.PhotoInput{
		{ID: "1", SourceURL: "p1", Width: 1, Height: 1},
		{ID: "2", SourceURL: "p2"},
		{ID: "3", SourceURL: "p3", Width: 10, Height: 20},
		{ID: "4", SourceURL: "missing", Width: 20, Height: 10},
		{ID: "5", SourceURL: "p5"},
	}
	classifier := &fakeClassifier{
		failOn: map[string]bool{"5": true},
		result: album.Analysis{Content: "cake", Emotion: "joy", Type: album.TypeKeyMoment, Quality: album.QualityExcellent, SuggestedSlot: album.SlotLandscape},
	}

	got := New(fetcher, classifier, Options{Concurrency: 2}).Analyze(context.Background(), photos)

	if len(got) != len(photos) {
		t.Fatalf("got %d analyzed photos, want %d", len(got), len(photos))
	}
	for i := range photos {
		if got[i].ID != photos[i].ID {
			t.Errorf("result %d is photo %s, want %s", i, got[i].ID, photos[i].ID)
		}
	}

	// Dimensions corrected from the header.
	if got[0].Width != 40 || got[0].Height != 20 || got[0].IsPortrait {
		t.Errorf("photo 1 = %dx%d portrait=%v", got[0].Width, got[0].Height, got[0].IsPortrait)
	}
	if got[0].Synthetic || got[0].Analysis.Type != album.TypeKeyMoment {
		t.Errorf("photo 1 should carry classifier output, got %+v", got[0].Analysis)
	}
	if !got[1].IsPortrait {
		t.Error("photo 2 should be portrait")
	}

	// Decode and fetch failures fall back to raw dimensions.
	for _, i := range []int{2, 3} {
		if !got[i].Synthetic || got[i].Analysis.Type != album.TypeContextual || got[i].Analysis.Quality != album.QualityGood {
			t.Errorf("photo %s should be synthetic default, got %+v", got[i].ID, got[i])
		}
	}
	if got[2].Analysis.SuggestedSlot != album.SlotPortrait || !got[2].IsPortrait {
		t.Errorf("photo 3 slot = %s", got[2].Analysis.SuggestedSlot)
	}
	if got[3].Analysis.SuggestedSlot != album.SlotLandscape {
		t.Errorf("photo 4 slot = %s", got[3].Analysis.SuggestedSlot)
	}

	// Classifier failure keeps corrected dimensions.
	if !got[4].Synthetic || got[4].Analysis.SuggestedSlot != album.SlotSquare || got[4].IsPortrait {
		t.Errorf("photo 5 = %+v", got[4])
	}
	if classifier.calls != 3 {
		t.Errorf("classifier calls = %d, want 3", classifier.calls)
	}
}

func TestAnalyze_NilClassifier(t *testing.T) {
	fetcher := mapFetcher{"a": pngBytes(t, 10, 30)}
	got := New(fetcher, nil, Options{}).Analyze(context.Background(), []album.PhotoInput{{ID: "a", SourceURL: "a"}})
	if len(got) != 1 || !got[0].Synthetic || got[0].Height != 30 {
		t.Errorf("got %+v", got)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	photos := []album.PhotoInput{{ID: "a", SourceURL: "a", Width: 3, Height: 2}, {ID: "b", SourceURL: "b"}}
	got := New(mapFetcher{}, nil, Options{}).Analyze(ctx, photos)
	if len(got) != 2 || !got[0].Synthetic || !got[1].Synthetic {
		t.Errorf("cancelled analysis must still be complete, got %+v", got)
	}
}

func TestDefault(t *testing.T) {
	tests := []struct {
		w, h     int
		portrait bool
		slot     album.SlotClass
	}{
		{100, 200, true, album.SlotPortrait},
		{200, 100, false, album.SlotLandscape},
		{100, 100, false, album.SlotSquare},
	}
	for _, tt := range tests {
		d := Default(album.PhotoInput{ID: "x", Width: tt.w, Height: tt.h})
		if d.IsPortrait != tt.portrait || d.Analysis.SuggestedSlot != tt.slot || !d.Synthetic {
			t.Errorf("Default(%dx%d) = %+v", tt.w, tt.h, d)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := album.Analysis{Content: "  beach ", Type: "Landscape_Scene", Quality: "meh", SuggestedSlot: "panorama"}
	got := Normalize(in, album.PhotoInput{Width: 300, Height: 100})

	if got.Content != "beach" {
		t.Errorf("Content = %q", got.Content)
	}
	if got.Type != album.TypeLandscapeScene {
		t.Errorf("Type = %q", got.Type)
	}
	if got.Quality != album.QualityGood {
		t.Errorf("Quality = %q", got.Quality)
	}
	if got.SuggestedSlot != album.SlotLandscape {
		t.Errorf("SuggestedSlot = %q", got.SuggestedSlot)
	}
	if strings.Contains(string(got.Type), "L") {
		t.Error("Type should be lower-cased")
	}
}
