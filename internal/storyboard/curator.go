package storyboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/assets"
)

// CuratorTextFocusEvery is the curator's pacing: interior page i with
// i%CuratorTextFocusEvery == CuratorTextFocusEvery-1 is a text page. The AI
// planner is only asked for "every 4 to 5 pages" and may differ.
const CuratorTextFocusEvery = 4

// Curator is the deterministic planner. It never calls out and never fails.
// The same request always yields the same storyboard.
type Curator struct{}

// NewCurator returns a Curator.
func NewCurator() *Curator { return &Curator{} }

// Plan implements Planner.
func (c *Curator) Plan(_ context.Context, req Request) (*album.Storyboard, error) {
	q := req.Questionnaire
	idx := photoIndex(req.Photos)

	cover := album.StoryboardPage{
		Layout:  album.LayoutCover,
		Title:   q.Title(),
		Caption: q.SpecialMessage(),
		Mood:    "warm",
	}
	var rest []album.AnalyzedPhoto
	if len(req.Photos) > 0 {
		cover.PhotoIDs = []string{req.Photos[0].ID}
		rest = req.Photos[1:]
	}
	cover.BackgroundPrompt = backgroundPrompt(q, cover.Mood, "album cover")

	var interior []album.StoryboardPage
	if len(req.Groupings) > 0 {
		interior = c.groupedPages(req, rest)
	} else {
		interior = c.pacedPages(q, rest)
	}

	if budget := interiorBudget(req); budget >= 0 && len(interior) > budget {
		interior = interior[:budget]
	}

	pages := make([]album.StoryboardPage, 0, len(interior)+2)
	pages = append(pages, cover)
	pages = append(pages, interior...)
	if !req.IsSample {
		back := album.StoryboardPage{
			Layout:   album.LayoutBackCover,
			PhotoIDs: []string{},
			Title:    q.Names(),
			Caption:  closingLine(q),
			Mood:     "calm",
		}
		back.BackgroundPrompt = backgroundPrompt(q, back.Mood, "album back cover")
		pages = append(pages, back)
	}

	narrative := fmt.Sprintf("A %s album of %d photos celebrating %s.", q.Style(), len(req.Photos), q.Occasion())
	return assemble(q.Title(), narrative, album.SourceCurator, pages, idx), nil
}

// pacedPages walks photos in order: landscapes and squares get a single page,
// two consecutive portraits share a double page, and every
// CuratorTextFocusEvery-th interior page is a text page while photos remain.
func (c *Curator) pacedPages(q album.Questionnaire, photos []album.AnalyzedPhoto) []album.StoryboardPage {
	var pages []album.StoryboardPage
	chapter := 0

	for i := 0; i < len(photos); {
		pos := len(pages)
		if pos%CuratorTextFocusEvery == CuratorTextFocusEvery-1 {
			chapter++
			pages = append(pages, textPage(q, chapter))
			continue
		}

		p := photos[i]
		if p.IsPortrait && i+1 < len(photos) && photos[i+1].IsPortrait {
			pages = append(pages, photoPage(q, album.LayoutDouble, photos[i:i+2]))
			i += 2
			continue
		}
		pages = append(pages, photoPage(q, album.LayoutSingle, photos[i:i+1]))
		i++
	}
	return pages
}

// groupedPages builds one interior page per user grouping, layout chosen by
// how many of the group's photos survive. IDs that are unknown, already used
// by the cover or repeated across groups are dropped. Photos in no group
// follow the groups in upload order without pacing pages.
func (c *Curator) groupedPages(req Request, rest []album.AnalyzedPhoto) []album.StoryboardPage {
	q := req.Questionnaire
	idx := photoIndex(req.Photos)

	used := make(map[string]bool, len(req.Photos))
	if len(req.Photos) > 0 {
		used[req.Photos[0].ID] = true
	}

	var pages []album.StoryboardPage
	chapter := 0
	for _, group := range req.Groupings {
		var members []album.AnalyzedPhoto
		for _, id := range group {
			p, ok := idx[id]
			if !ok || used[id] {
				continue
			}
			used[id] = true
			members = append(members, p)
		}
		layout := LayoutForCount(len(members))
		if layout == album.LayoutTextFocus {
			chapter++
			pages = append(pages, textPage(q, chapter))
			continue
		}
		pages = append(pages, photoPage(q, layout, members))
	}

	for _, p := range rest {
		if used[p.ID] {
			continue
		}
		used[p.ID] = true
		pages = append(pages, photoPage(q, album.LayoutSingle, []album.AnalyzedPhoto{p}))
	}
	return pages
}

func photoPage(q album.Questionnaire, layout album.LayoutType, photos []album.AnalyzedPhoto) album.StoryboardPage {
	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}

	lead := photos[0].Analysis
	mood := lead.Emotion
	if mood == "" {
		mood = "warm"
	}
	page := album.StoryboardPage{
		Layout:   layout,
		PhotoIDs: ids,
		Mood:     mood,
	}
	if !photos[0].Synthetic {
		page.Caption = lead.Content
	}
	page.BackgroundPrompt = backgroundPrompt(q, mood, "")
	return page
}

func textPage(q album.Questionnaire, chapter int) album.StoryboardPage {
	caption := q.SpecialMessage()
	if caption == "" {
		caption = "More moments from our " + q.Occasion()
	}
	page := album.StoryboardPage{
		Layout:   album.LayoutTextFocus,
		PhotoIDs: []string{},
		Title:    fmt.Sprintf("Chapter %d", chapter),
		Caption:  caption,
		Mood:     "reflective",
	}
	page.BackgroundPrompt = backgroundPrompt(q, page.Mood, "")
	return page
}

func closingLine(q album.Questionnaire) string {
	return "Made with love for " + strings.ToLower(q.Occasion())
}

func backgroundPrompt(q album.Questionnaire, mood, detail string) string {
	return assets.RenderBackgroundPrompt(assets.BackgroundPrompt{
		Style:    q.Style(),
		Occasion: q.Occasion(),
		Mood:     mood,
		Detail:   detail,
	})
}
