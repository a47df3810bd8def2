// Package pipeline runs the album generation stages for one job and owns the
// job record while it does.
//
// Stages run in order: analyze, plan, backgrounds, compose, assemble. Stage
// failures that have a deterministic substitute never reach this package;
// what does reach it is either a skipped page or a fatal error that marks the
// job failed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/analyzer"
	"github.com/fpang/photo-album-pipeline/internal/background"
	"github.com/fpang/photo-album-pipeline/internal/compose"
	"github.com/fpang/photo-album-pipeline/internal/document"
	"github.com/fpang/photo-album-pipeline/internal/fetch"
	"github.com/fpang/photo-album-pipeline/internal/jobutil"
	"github.com/fpang/photo-album-pipeline/internal/metrics"
	"github.com/fpang/photo-album-pipeline/internal/storage"
	"github.com/fpang/photo-album-pipeline/internal/store"
	"github.com/fpang/photo-album-pipeline/internal/storyboard"
)

// Request describes one album job.
type Request struct {
	JobID         string
	SessionID     string
	Photos        []album.PhotoInput
	Questionnaire album.Questionnaire
	PageCount     int
	IsSample      bool
	Groupings     [][]string
	// Format is the physical page format. The zero value selects
	// document.DefaultFormat.
	Format document.Format
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Jobs        store.JobStore
	Storage     storage.Store
	Fetcher     fetch.Fetcher
	Analyzer    *analyzer.Analyzer
	Planner     storyboard.Planner
	Backgrounds *background.Provider
	Compose     compose.Options
	// MetricsOut receives EMF documents. Nil means stdout.
	MetricsOut io.Writer
}

// Orchestrator runs album jobs.
type Orchestrator struct {
	deps      Deps
	assembler *document.Assembler
}

// New returns an Orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps, assembler: document.NewAssembler(deps.Storage)}
}

func (o *Orchestrator) recorder() *metrics.Recorder {
	return metrics.For(o.deps.MetricsOut)
}

// stageDone emits the latency of one stage.
func (o *Orchestrator) stageDone(jobID, stage string, start time.Time) {
	o.recorder().
		Dimension("Stage", stage).
		Since(metrics.StageLatencyMs, start).
		Property("jobId", jobID).
		Flush()
}

// Run executes the job and returns the final job record. The returned error
// is non-nil when the job failed; the record then carries the failure message.
// An error creating the record is returned with a nil job.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*store.AlbumJob, error) {
	start := time.Now()
	if f, ok := o.deps.Fetcher.(fetch.Flusher); ok {
		// Cached photo bytes are only shared between the stages of one job.
		defer f.Flush()
	}
	format, err := resolveFormat(req.Format)
	if err != nil {
		return nil, err
	}

	job, err := o.openJob(ctx, req, format)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("job", job.ID).
		Str("sessionId", job.SessionID).
		Int("photos", len(req.Photos)).
		Int("pageCount", req.PageCount).
		Bool("sample", req.IsSample).
		Str("format", format.Name).
		Msg("Album job started")

	rec := o.recorder().Property("jobId", job.ID)
	defer rec.Flush()

	if err := o.run(ctx, job, req, format, rec); err != nil {
		rec.Count(metrics.JobsFailed)
		// The caller's context may be the reason we are failing; the
		// record still has to be written.
		if ferr := jobutil.Fail(context.WithoutCancel(ctx), o.deps.Jobs, job, err.Error()); ferr != nil {
			log.Error().Err(ferr).Str("job", job.ID).Msg("Failed to record job failure")
		}
		return job, err
	}

	rec.Count(metrics.JobsCompleted).Since(metrics.StageLatencyMs, start)
	log.Info().
		Str("job", job.ID).
		Str("result", job.ResultRef).
		Str("planSource", job.PlanSource).
		Int("pages", job.PagesDone).
		Int("pagesTotal", job.PagesTotal).
		Dur("duration", time.Since(start)).
		Msg("Album job complete")
	return job, nil
}

// openJob creates the job record. A record already created by the start API
// is adopted as long as no worker has touched it yet.
func (o *Orchestrator) openJob(ctx context.Context, req Request, format document.Format) (*store.AlbumJob, error) {
	job := &store.AlbumJob{
		ID:        req.JobID,
		SessionID: req.SessionID,
		Status:    store.StatusProcessing,
		Format:    format.Name,
	}
	err := o.deps.Jobs.CreateAlbumJob(ctx, job)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, store.ErrJobExists) {
		return nil, fmt.Errorf("create job record: %w", err)
	}

	existing, gerr := o.deps.Jobs.GetAlbumJob(ctx, req.SessionID, req.JobID)
	if gerr != nil {
		return nil, fmt.Errorf("load job record: %w", gerr)
	}
	if existing == nil || existing.Status != store.StatusProcessing || existing.PagesTotal != 0 {
		return nil, fmt.Errorf("job %s cannot be started: %w", req.JobID, store.ErrJobExists)
	}
	existing.Format = format.Name
	return existing, nil
}

func (o *Orchestrator) run(ctx context.Context, job *store.AlbumJob, req Request, format document.Format, rec *metrics.Recorder) error {
	if err := ValidatePhotos(req.Photos); err != nil {
		return err
	}

	// Analyze.
	stageStart := time.Now()
	analyzed := o.deps.Analyzer.Analyze(ctx, req.Photos)
	synthetic := 0
	for _, p := range analyzed {
		if p.Synthetic {
			synthetic++
		}
	}
	rec.Add(metrics.PhotosAnalyzed, len(analyzed)).Add(metrics.SyntheticAnalyses, synthetic)
	o.stageDone(job.ID, "analyze", stageStart)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled after analysis: %w", err)
	}

	// Plan.
	stageStart = time.Now()
	sb, err := o.deps.Planner.Plan(ctx, storyboard.Request{
		Photos:        analyzed,
		Questionnaire: req.Questionnaire,
		PageCount:     req.PageCount,
		IsSample:      req.IsSample,
		Groupings:     req.Groupings,
	})
	if err != nil {
		return fmt.Errorf("storyboard planning failed: %w", err)
	}
	o.stageDone(job.ID, "plan", stageStart)
	log.Info().
		Str("job", job.ID).
		Str("source", string(sb.Source)).
		Str("title", sb.AlbumTitle).
		Int("pages", len(sb.Pages)).
		Msg("Storyboard ready")

	job.PlanSource = string(sb.Source)
	job.PagesTotal = len(sb.Pages)
	if err := o.deps.Jobs.UpdateAlbumJob(ctx, job); err != nil {
		return fmt.Errorf("update job record: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled after planning: %w", err)
	}

	// Backgrounds.
	stageStart = time.Now()
	backgrounds := o.deps.Backgrounds.Provide(ctx, job.ID, sb.Pages, req.Questionnaire.Style())
	fallbacks := 0
	for _, bg := range backgrounds {
		if bg.Fallback {
			fallbacks++
		}
	}
	rec.Add(metrics.BackgroundFallbacks, fallbacks)
	o.stageDone(job.ID, "background", stageStart)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled after backgrounds: %w", err)
	}

	// Compose, one page at a time.
	stageStart = time.Now()
	composed, err := o.composePages(ctx, job, sb, backgrounds, analyzed, format, rec)
	if err != nil {
		return err
	}
	o.stageDone(job.ID, "compose", stageStart)

	// Assemble.
	stageStart = time.Now()
	sort.Slice(composed, func(i, j int) bool { return composed[i].PageIndex < composed[j].PageIndex })
	ref, err := o.assembler.Assemble(ctx, job.ID, composed, format)
	if err != nil {
		return fmt.Errorf("document assembly failed: %w", err)
	}
	o.stageDone(job.ID, "assemble", stageStart)

	job.Status = store.StatusDone
	job.ResultRef = ref
	if err := o.deps.Jobs.UpdateAlbumJob(ctx, job); err != nil {
		// The document exists but the record could not say so.
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}

// composePages renders every page in storyboard order. A page that fails is
// skipped; the job fails only when no page survives.
func (o *Orchestrator) composePages(ctx context.Context, job *store.AlbumJob, sb *album.Storyboard, backgrounds map[int]album.Background, analyzed []album.AnalyzedPhoto, format document.Format, rec *metrics.Recorder) ([]album.ComposedPage, error) {
	compositor, err := compose.New(o.deps.Storage, o.deps.Fetcher, format, o.deps.Compose)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}

	photos := make(map[string]album.AnalyzedPhoto, len(analyzed))
	for _, p := range analyzed {
		photos[p.ID] = p
	}

	composed := make([]album.ComposedPage, 0, len(sb.Pages))
	skipped := 0
	for _, page := range sb.Pages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled at page %d: %w", page.Index, err)
		}

		cp, err := compositor.Compose(ctx, job.ID, page, backgrounds[page.Index], photos)
		if err != nil {
			log.Warn().
				Err(err).
				Str("job", job.ID).
				Int("page", page.Index).
				Str("layout", string(page.Layout)).
				Msg("Page composition failed, skipping page")
			skipped++
			continue
		}
		composed = append(composed, cp)

		job.PagesDone++
		if err := o.deps.Jobs.UpdateAlbumJob(ctx, job); err != nil {
			if errors.Is(err, store.ErrInvalidTransition) {
				// Someone else finished the job, most likely the status
				// API after the deadline passed.
				return nil, fmt.Errorf("job closed while composing: %w", err)
			}
			log.Warn().Err(err).Str("job", job.ID).Int("pagesDone", job.PagesDone).Msg("Failed to record progress")
		}
	}

	rec.Add(metrics.PagesComposed, len(composed)).Add(metrics.PagesSkipped, skipped)
	if len(composed) == 0 {
		return nil, fmt.Errorf("no page could be composed: %w", document.ErrNoPages)
	}
	return composed, nil
}

func resolveFormat(f document.Format) (document.Format, error) {
	if f.Name == "" && f.WidthMM == 0 {
		return document.Lookup(document.DefaultFormat)
	}
	if f.WidthMM <= 0 || f.HeightMM <= 0 || f.DPI <= 0 {
		return document.Format{}, fmt.Errorf("invalid page format %q", f.Name)
	}
	return f, nil
}
