// Package document assembles composed page rasters into a print-ready PDF
// whose page box matches the physical format exactly.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/storage"
)

// ErrNoPages is returned when there is nothing to assemble.
var ErrNoPages = errors.New("no pages to assemble")

// Assembler builds the album PDF from stored page rasters.
type Assembler struct {
	store storage.Store
}

// NewAssembler returns an Assembler reading and writing through store.
func NewAssembler(store storage.Store) *Assembler {
	return &Assembler{store: store}
}

// Assemble writes one PDF page per composed page, in the given order, and
// stores the document. Page indexes must be strictly increasing; gaps left by
// skipped pages are allowed.
func (a *Assembler) Assemble(ctx context.Context, jobID string, pages []album.ComposedPage, format Format) (string, error) {
	start := time.Now()
	if len(pages) == 0 {
		return "", ErrNoPages
	}
	for i := 1; i < len(pages); i++ {
		if pages[i].PageIndex <= pages[i-1].PageIndex {
			return "", fmt.Errorf("pages out of order: index %d follows %d", pages[i].PageIndex, pages[i-1].PageIndex)
		}
	}

	pdf, err := a.build(ctx, pages, format)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}

	ref, err := a.store.Put(ctx, storage.DocumentKey(jobID), buf.Bytes(), "application/pdf")
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	log.Info().
		Str("job", jobID).
		Str("format", format.Name).
		Int("pages", len(pages)).
		Int("size", buf.Len()).
		Dur("duration", time.Since(start)).
		Msg("Album document assembled")
	return ref, nil
}

// build lays out every page raster edge to edge on a page box of the format's
// physical size plus bleed.
func (a *Assembler) build(ctx context.Context, pages []album.ComposedPage, format Format) (*fpdf.Fpdf, error) {
	w, h := format.PageSizePoints()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("photo-album-pipeline", true)

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := a.store.Get(ctx, page.ImageRef)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", page.PageIndex, err)
		}

		name := fmt.Sprintf("page-%03d", page.PageIndex)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to place page %d: %w", page.PageIndex, err)
		}
	}
	return pdf, nil
}
