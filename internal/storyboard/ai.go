package storyboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/assets"
	"github.com/fpang/photo-album-pipeline/internal/jsonutil"
)

// Defaults for AIPlanner retries.
const (
	DefaultRetries = 2
	DefaultBackoff = 2 * time.Second
)

// TextGenerator returns a model's raw text answer to a JSON-producing prompt.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

// AIPlanner asks a language model for a plan and sanitizes the answer.
type AIPlanner struct {
	gen     TextGenerator
	retries int
	backoff time.Duration
}

// NewAIPlanner returns an AIPlanner making up to 1+retries attempts with a
// fixed backoff between them. Negative values select the defaults.
func NewAIPlanner(gen TextGenerator, retries int, backoff time.Duration) *AIPlanner {
	if retries < 0 {
		retries = DefaultRetries
	}
	if backoff < 0 {
		backoff = DefaultBackoff
	}
	return &AIPlanner{gen: gen, retries: retries, backoff: backoff}
}

// planResponse is the JSON shape requested from the model. Every field is
// untrusted until sanitize has run.
type planResponse struct {
	AlbumTitle string     `json:"albumTitle"`
	Narrative  string     `json:"narrative"`
	Pages      []planPage `json:"pages"`
}

type planPage struct {
	LayoutType       string   `json:"layoutType"`
	PhotoIDs         []string `json:"photoIds"`
	Title            string   `json:"title"`
	Caption          string   `json:"caption"`
	Mood             string   `json:"mood"`
	TextPlacement    string   `json:"textPlacement"`
	BackgroundPrompt string   `json:"backgroundPrompt"`
}

// Plan implements Planner. It returns an error wrapping ErrNoPlan once every
// attempt has failed.
func (a *AIPlanner) Plan(ctx context.Context, req Request) (*album.Storyboard, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %v", ErrNoPlan, err)
	}

	var lastErr error
	attempts := a.retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrNoPlan, ctx.Err())
			case <-time.After(a.backoff):
			}
		}

		sb, err := a.attempt(ctx, req, prompt)
		if err == nil {
			log.Info().
				Int("attempt", attempt).
				Int("pages", len(sb.Pages)).
				Msg("AI storyboard accepted")
			return sb, nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("AI storyboard attempt failed")
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrNoPlan, attempts, lastErr)
}

func (a *AIPlanner) attempt(ctx context.Context, req Request, prompt string) (*album.Storyboard, error) {
	raw, err := a.gen.GenerateJSON(ctx, assets.StoryboardSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	resp, err := jsonutil.ParseJSON[planResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return sanitize(resp, req)
}

var errEmptyPlan = errors.New("plan has no pages")

// sanitize turns an untrusted model plan into a valid storyboard. Unknown and
// repeated photo IDs are dropped, layouts that no longer fit their photos are
// re-derived, the cover and back cover are enforced and the page budget is
// applied. Only an empty page list is rejected.
func sanitize(resp planResponse, req Request) (*album.Storyboard, error) {
	if len(resp.Pages) == 0 {
		return nil, errEmptyPlan
	}

	q := req.Questionnaire
	idx := photoIndex(req.Photos)
	used := make(map[string]bool, len(req.Photos))

	pages := make([]album.StoryboardPage, 0, len(resp.Pages)+1)
	for i, pp := range resp.Pages {
		ids := make([]string, 0, len(pp.PhotoIDs))
		for _, id := range pp.PhotoIDs {
			id = strings.TrimSpace(id)
			if i == 0 && len(ids) == 1 {
				break // the cover holds one photo; the rest stay available
			}
			if _, ok := idx[id]; !ok || used[id] {
				log.Debug().Str("photo", id).Int("page", i).Msg("Dropping unknown or repeated photo from AI plan")
				continue
			}
			used[id] = true
			ids = append(ids, id)
		}

		layout := album.LayoutType(strings.ToLower(strings.TrimSpace(pp.LayoutType)))
		pages = append(pages, album.StoryboardPage{
			Layout:           layout,
			PhotoIDs:         ids,
			Title:            strings.TrimSpace(pp.Title),
			Caption:          strings.TrimSpace(pp.Caption),
			Mood:             strings.TrimSpace(pp.Mood),
			TextPlacement:    parsePlacement(pp.TextPlacement),
			BackgroundPrompt: strings.TrimSpace(pp.BackgroundPrompt),
		})
	}

	// Cover: first page, at most one photo; an empty cover takes the first unused photo.
	cover := pages[0]
	cover.Layout = album.LayoutCover
	if len(cover.PhotoIDs) == 0 {
		for _, p := range req.Photos {
			if !used[p.ID] {
				used[p.ID] = true
				cover.PhotoIDs = []string{p.ID}
				break
			}
		}
	}
	if cover.Title == "" {
		cover.Title = q.Title()
	}

	// Interior: drop back covers the model placed anywhere, fix layouts.
	interior := make([]album.StoryboardPage, 0, len(pages))
	for _, p := range pages[1:] {
		if p.Layout == album.LayoutBackCover && len(p.PhotoIDs) == 0 {
			continue
		}
		if p.Layout == album.LayoutCover || p.Layout == album.LayoutBackCover || !Accepts(p.Layout, len(p.PhotoIDs)) {
			p.Layout = LayoutForCount(len(p.PhotoIDs))
		}
		interior = append(interior, p)
	}
	if budget := interiorBudget(req); budget >= 0 && len(interior) > budget {
		interior = interior[:budget]
	}

	out := make([]album.StoryboardPage, 0, len(interior)+2)
	out = append(out, cover)
	out = append(out, interior...)
	if !req.IsSample {
		back := album.StoryboardPage{Layout: album.LayoutBackCover, PhotoIDs: []string{}, Title: q.Names(), Caption: closingLine(q)}
		if last := pages[len(pages)-1]; len(pages) > 1 && last.Layout == album.LayoutBackCover && len(last.PhotoIDs) == 0 {
			back.Title, back.Caption, back.Mood = last.Title, last.Caption, last.Mood
			back.TextPlacement, back.BackgroundPrompt = last.TextPlacement, last.BackgroundPrompt
		}
		out = append(out, back)
	}

	for i := range out {
		if out[i].BackgroundPrompt == "" {
			mood := out[i].Mood
			if mood == "" {
				mood = "warm"
			}
			out[i].BackgroundPrompt = backgroundPrompt(q, mood, "")
		}
	}

	title := strings.TrimSpace(resp.AlbumTitle)
	if title == "" {
		title = cover.Title
	}
	sb := assemble(title, strings.TrimSpace(resp.Narrative), album.SourceAI, out, idx)
	if err := album.Validate(sb, req.IsSample); err != nil {
		return nil, err
	}
	return sb, nil
}

func parsePlacement(s string) album.Placement {
	switch p := album.Placement(strings.ToLower(strings.TrimSpace(s))); p {
	case album.PlacementTop, album.PlacementCenter, album.PlacementBottom:
		return p
	default:
		return ""
	}
}

// buildPrompt renders the per-job planning request.
func buildPrompt(req Request) (string, error) {
	q := req.Questionnaire
	data := assets.StoryboardRequest{
		Occasion:  q.Occasion(),
		Style:     q.Style(),
		Title:     q[album.KeyTitle],
		PageCount: max(req.PageCount, 0),
		IsSample:  req.IsSample,
		Groupings: req.Groupings,
	}
	for _, k := range q.Keys() {
		data.Answers = append(data.Answers, assets.Answer{Key: k, Value: strings.TrimSpace(q[k])})
	}
	for _, p := range req.Photos {
		line := assets.PhotoLine{
			ID:          p.ID,
			Orientation: string(album.SlotClassFor(p.Width, p.Height)),
			Type:        string(p.Analysis.Type),
			Quality:     string(p.Analysis.Quality),
			Emotion:     p.Analysis.Emotion,
			Content:     p.Analysis.Content,
		}
		if line.Emotion == "" {
			line.Emotion = "unknown"
		}
		if line.Content == "" {
			line.Content = "(not described)"
		}
		if !p.TakenAt.IsZero() {
			line.TakenAt = p.TakenAt.Format("2006-01-02 15:04")
		}
		data.Photos = append(data.Photos, line)
	}
	return assets.RenderStoryboardRequest(data)
}
