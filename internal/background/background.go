// Package background provides one backdrop per storyboard page: a synthesized
// image when the image model cooperates, otherwise a solid color chosen by
// the album style.
package background

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/batch"
	"github.com/fpang/photo-album-pipeline/internal/storage"
)

// DefaultConcurrency is lower than the analyzer's because synthesis calls
// cost more.
const DefaultConcurrency = 2

// Synthesizer renders a text prompt to an encoded image.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (data []byte, mimeType string, err error)
}

// styleColors maps album styles to fallback page colors.
var styleColors = map[string]string{
	"classic":  "#F5F1E8",
	"modern":   "#F2F3F5",
	"romantic": "#F8E5E9",
	"vintage":  "#EADCC6",
	"minimal":  "#FFFFFF",
	"playful":  "#FFF3C4",
}

// StyleColor returns the fallback color for a style. Unknown styles use the
// classic color.
func StyleColor(style string) string {
	if c, ok := styleColors[strings.ToLower(strings.TrimSpace(style))]; ok {
		return c
	}
	return styleColors[album.DefaultStyle]
}

// Options tunes a Provider.
type Options struct {
	Concurrency int
	Limiter     *rate.Limiter
}

// Provider runs the background stage.
type Provider struct {
	synth Synthesizer
	store storage.Store
	opts  Options
}

// NewProvider returns a Provider. A nil synthesizer gives every page the
// style color.
func NewProvider(synth Synthesizer, store storage.Store, opts Options) *Provider {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Provider{synth: synth, store: store, opts: opts}
}

// Provide returns exactly one Background per page index.
func (p *Provider) Provide(ctx context.Context, jobID string, pages []album.StoryboardPage, style string) map[int]album.Background {
	start := time.Now()
	out := make(map[int]album.Background, len(pages))

	if p.synth != nil {
		results := batch.Run(ctx, pages, batch.Options{
			Size:    p.opts.Concurrency,
			Limiter: p.opts.Limiter,
			Name:    "background",
		}, func(ctx context.Context, page album.StoryboardPage) (album.Background, error) {
			return p.synthesize(ctx, jobID, page)
		})

		for i, r := range results {
			if r.Err != nil {
				log.Warn().
					Err(r.Err).
					Str("job", jobID).
					Int("page", pages[i].Index).
					Msg("Background synthesis failed, using style color")
				continue
			}
			out[pages[i].Index] = r.Value
		}
	}

	color := StyleColor(style)
	fallbacks := 0
	for _, page := range pages {
		if _, ok := out[page.Index]; ok {
			continue
		}
		out[page.Index] = album.Background{PageIndex: page.Index, Color: color, Fallback: true}
		fallbacks++
	}

	log.Info().
		Str("job", jobID).
		Int("pages", len(pages)).
		Int("fallbacks", fallbacks).
		Dur("duration", time.Since(start)).
		Msg("Backgrounds ready")

	return out
}

func (p *Provider) synthesize(ctx context.Context, jobID string, page album.StoryboardPage) (album.Background, error) {
	if strings.TrimSpace(page.BackgroundPrompt) == "" {
		return album.Background{}, fmt.Errorf("page %d has no background prompt", page.Index)
	}
	data, mimeType, err := p.synth.Synthesize(ctx, page.BackgroundPrompt)
	if err != nil {
		return album.Background{}, fmt.Errorf("synthesize: %w", err)
	}
	if len(data) == 0 {
		return album.Background{}, fmt.Errorf("synthesizer returned no image")
	}

	key := storage.BackgroundKey(jobID, page.Index, storage.ExtensionFor(mimeType))
	ref, err := p.store.Put(ctx, key, data, mimeType)
	if err != nil {
		return album.Background{}, fmt.Errorf("store background: %w", err)
	}
	return album.Background{PageIndex: page.Index, ImageRef: ref}, nil
}
