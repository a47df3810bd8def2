package pipeline

import (
	"context"
	"io"

	"golang.org/x/time/rate"

	"github.com/fpang/photo-album-pipeline/internal/analyzer"
	"github.com/fpang/photo-album-pipeline/internal/background"
	"github.com/fpang/photo-album-pipeline/internal/chat"
	"github.com/fpang/photo-album-pipeline/internal/compose"
	"github.com/fpang/photo-album-pipeline/internal/config"
	"github.com/fpang/photo-album-pipeline/internal/fetch"
	"github.com/fpang/photo-album-pipeline/internal/storage"
	"github.com/fpang/photo-album-pipeline/internal/store"
	"github.com/fpang/photo-album-pipeline/internal/storyboard"
)

// Build wires an Orchestrator from configuration. A nil ai runs without any
// model calls: synthetic analyses, the curator plan and style colors.
func Build(cfg *config.Config, jobs store.JobStore, st storage.Store, ai *chat.Gemini, metricsOut io.Writer) *Orchestrator {
	httpFetcher := fetch.NewHTTPFetcher(cfg.FetchTimeout())
	httpFetcher.MaxBytes = cfg.Fetch.MaxBytes
	var fetcher fetch.Fetcher = httpFetcher
	if ttl := cfg.CacheTTL(); ttl > 0 {
		fetcher = fetch.NewCachingFetcher(httpFetcher, ttl)
	}

	var (
		limiter    *rate.Limiter
		classifier analyzer.Classifier
		synth      background.Synthesizer
		planner    storyboard.Planner = storyboard.NewCurator()
	)
	if ai != nil {
		// One limiter paces classification, planning and background calls.
		// Offline runs make no model calls and fetch unpaced.
		limiter = rate.NewLimiter(rate.Limit(cfg.Gemini.RequestsPerSecond), cfg.Gemini.Burst)
		classifier = ai
		planner = storyboard.Fallback{
			Primary:   storyboard.NewAIPlanner(pacedGenerator{next: ai, limiter: limiter}, cfg.Pipeline.PlannerRetries, cfg.PlannerBackoff()),
			Secondary: storyboard.NewCurator(),
		}
		if cfg.Gemini.BackgroundsEnabled {
			synth = ai
		}
	}

	return New(Deps{
		Jobs:    jobs,
		Storage: st,
		Fetcher: fetcher,
		Analyzer: analyzer.New(fetcher, classifier, analyzer.Options{
			Concurrency:           cfg.Pipeline.AnalyzeConcurrency,
			Limiter:               limiter,
			ThumbnailMaxDimension: cfg.Pipeline.ThumbnailMaxDimension,
		}),
		Planner: planner,
		Backgrounds: background.NewProvider(synth, st, background.Options{
			Concurrency: cfg.Pipeline.BackgroundConcurrency,
			Limiter:     limiter,
		}),
		Compose: compose.Options{
			WordsPerLine: cfg.Pipeline.WordsPerLine,
			JPEGQuality:  cfg.Pipeline.JPEGQuality,
		},
		MetricsOut: metricsOut,
	})
}

// pacedGenerator waits on the shared limiter before each planning call.
type pacedGenerator struct {
	next    storyboard.TextGenerator
	limiter *rate.Limiter
}

func (p pacedGenerator) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.next.GenerateJSON(ctx, system, prompt)
}
