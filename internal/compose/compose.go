// Package compose renders storyboard pages to full-resolution rasters:
// background, cover-fitted photos, then the text block.
//
// Pages are rendered one at a time; a single page canvas at 300 DPI is tens
// of megabytes, so callers must not run Compose concurrently for one job.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/document"
	"github.com/fpang/photo-album-pipeline/internal/fetch"
	"github.com/fpang/photo-album-pipeline/internal/imaging"
	"github.com/fpang/photo-album-pipeline/internal/storage"
)

// Options tunes a Compositor.
type Options struct {
	WordsPerLine int
	JPEGQuality  int
}

// Compositor renders pages for one print format.
type Compositor struct {
	store        storage.Store
	fetcher      fetch.Fetcher
	format       document.Format
	wordsPerLine int
	quality      int
	fonts        *fonts
}

// New returns a Compositor rendering at the format's pixel size.
func New(store storage.Store, fetcher fetch.Fetcher, format document.Format, opts Options) (*Compositor, error) {
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	if opts.WordsPerLine < 1 {
		opts.WordsPerLine = DefaultWordsPerLine
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = imaging.DefaultJPEGQuality
	}
	return &Compositor{
		store:        store,
		fetcher:      fetcher,
		format:       format,
		wordsPerLine: opts.WordsPerLine,
		quality:      opts.JPEGQuality,
		fonts:        f,
	}, nil
}

// Compose renders one page and stores it. Any photo or background that
// cannot be loaded fails the page.
func (c *Compositor) Compose(ctx context.Context, jobID string, page album.StoryboardPage, bg album.Background, photos map[string]album.AnalyzedPhoto) (album.ComposedPage, error) {
	start := time.Now()
	if len(page.PhotoIDs) != len(page.Slots) {
		return album.ComposedPage{}, fmt.Errorf("page %d has %d photos for %d slots", page.Index, len(page.PhotoIDs), len(page.Slots))
	}

	w, h := c.format.PixelSize()
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))

	if err := c.drawBackground(ctx, canvas, bg); err != nil {
		return album.ComposedPage{}, fmt.Errorf("page %d background: %w", page.Index, err)
	}

	for i, id := range page.PhotoIDs {
		photo, ok := photos[id]
		if !ok {
			return album.ComposedPage{}, fmt.Errorf("page %d references unknown photo %s", page.Index, id)
		}
		if err := c.drawPhoto(ctx, canvas, photo, page.Slots[i]); err != nil {
			return album.ComposedPage{}, fmt.Errorf("page %d photo %s: %w", page.Index, id, err)
		}
	}

	if err := c.drawTextBlock(canvas, page.Title, page.Caption, page.TextPlacement); err != nil {
		return album.ComposedPage{}, fmt.Errorf("page %d text: %w", page.Index, err)
	}

	data, err := imaging.EncodeJPEG(canvas, c.quality)
	if err != nil {
		return album.ComposedPage{}, err
	}
	ref, err := c.store.Put(ctx, storage.PageKey(jobID, page.Index), data, "image/jpeg")
	if err != nil {
		return album.ComposedPage{}, fmt.Errorf("store page %d: %w", page.Index, err)
	}

	log.Debug().
		Str("job", jobID).
		Int("page", page.Index).
		Str("layout", string(page.Layout)).
		Int("photos", len(page.PhotoIDs)).
		Int("size", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Page composed")

	return album.ComposedPage{PageIndex: page.Index, ImageRef: ref}, nil
}

func (c *Compositor) drawBackground(ctx context.Context, canvas *image.RGBA, bg album.Background) error {
	if bg.ImageRef != "" {
		data, err := c.store.Get(ctx, bg.ImageRef)
		if err != nil {
			return err
		}
		img, err := imaging.Decode(data)
		if err != nil {
			return err
		}
		b := canvas.Bounds()
		draw.Draw(canvas, b, CoverFit(img, b.Dx(), b.Dy()), image.Point{}, draw.Src)
		return nil
	}

	col, err := ParseHexColor(bg.Color)
	if err != nil {
		return err
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	return nil
}

func (c *Compositor) drawPhoto(ctx context.Context, canvas *image.RGBA, photo album.AnalyzedPhoto, slot album.Slot) error {
	rect := SlotRect(slot, canvas.Bounds().Dx(), canvas.Bounds().Dy())
	if rect.Empty() {
		return fmt.Errorf("empty slot %+v", slot)
	}

	data, err := c.fetcher.Fetch(ctx, photo.SourceURL)
	if err != nil {
		return err
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return err
	}

	fitted := CoverFit(img, rect.Dx(), rect.Dy())
	draw.Draw(canvas, rect, fitted, image.Point{}, draw.Src)
	return nil
}

// SlotRect converts a page-fraction slot to a pixel rectangle on a w x h
// canvas, clipped to the canvas.
func SlotRect(s album.Slot, w, h int) image.Rectangle {
	x0 := int(math.Round(s.X * float64(w)))
	y0 := int(math.Round(s.Y * float64(h)))
	x1 := int(math.Round((s.X + s.W) * float64(w)))
	y1 := int(math.Round((s.Y + s.H) * float64(h)))
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, w, h))
}
