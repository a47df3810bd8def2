// Package storyboard plans the page sequence of an album.
//
// Two strategies implement Planner: AIPlanner asks a language model for a
// plan and sanitizes whatever comes back, and Curator derives a plan from
// fixed rules with no external calls. Fallback combines them so a caller
// always receives a valid storyboard.
package storyboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
)

// ErrNoPlan is returned when a planner could not produce a storyboard.
var ErrNoPlan = errors.New("no storyboard produced")

// Planner produces a storyboard for a set of analyzed photos.
type Planner interface {
	Plan(ctx context.Context, req Request) (*album.Storyboard, error)
}

// Request carries everything a planner needs.
type Request struct {
	Photos        []album.AnalyzedPhoto
	Questionnaire album.Questionnaire
	// PageCount caps the number of pages. Zero or negative means no cap.
	PageCount int
	// IsSample marks a short preview album that has no back cover.
	IsSample bool
	// Groupings lists photo IDs the user placed on the same page.
	Groupings [][]string
}

// Fallback tries Primary and, on any error, returns Secondary's plan.
type Fallback struct {
	Primary   Planner
	Secondary Planner
}

// Plan implements Planner.
func (f Fallback) Plan(ctx context.Context, req Request) (*album.Storyboard, error) {
	if f.Primary != nil {
		sb, err := f.Primary.Plan(ctx, req)
		if err == nil {
			return sb, nil
		}
		log.Warn().Err(err).Msg("Primary planner failed, using fallback planner")
	}
	if f.Secondary == nil {
		return nil, fmt.Errorf("%w: no fallback planner", ErrNoPlan)
	}
	return f.Secondary.Plan(ctx, req)
}

// interiorBudget returns how many pages may sit between the cover and the
// back cover, or -1 for no limit.
func interiorBudget(req Request) int {
	if req.PageCount <= 0 {
		return -1
	}
	reserved := 1
	if !req.IsSample {
		reserved = 2
	}
	return max(0, req.PageCount-reserved)
}

// photoIndex maps photo IDs to analyzed photos.
func photoIndex(photos []album.AnalyzedPhoto) map[string]album.AnalyzedPhoto {
	idx := make(map[string]album.AnalyzedPhoto, len(photos))
	for _, p := range photos {
		idx[p.ID] = p
	}
	return idx
}

// lookup resolves IDs that exist in idx, preserving order.
func lookup(idx map[string]album.AnalyzedPhoto, ids []string) []album.AnalyzedPhoto {
	out := make([]album.AnalyzedPhoto, 0, len(ids))
	for _, id := range ids {
		if p, ok := idx[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// assemble finalizes pages: indexes them, fills slots from the layout
// templates and applies default text placement.
func assemble(title, narrative string, source album.PlanSource, pages []album.StoryboardPage, idx map[string]album.AnalyzedPhoto) *album.Storyboard {
	for i := range pages {
		p := &pages[i]
		p.Index = i
		if p.PhotoIDs == nil {
			p.PhotoIDs = []string{}
		}
		p.Slots = SlotsFor(p.Layout, lookup(idx, p.PhotoIDs))
		if p.TextPlacement == "" {
			p.TextPlacement = DefaultPlacement(p.Layout)
		}
	}
	return &album.Storyboard{
		AlbumTitle: title,
		Narrative:  narrative,
		Pages:      pages,
		Source:     source,
	}
}
