// Package analyzer classifies input photographs for the storyboard planner.
//
// Analyze always returns one AnalyzedPhoto per input, in input order. A photo
// whose fetch, decode or classification fails gets a synthetic default
// analysis instead of being dropped.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/batch"
	"github.com/fpang/photo-album-pipeline/internal/fetch"
	"github.com/fpang/photo-album-pipeline/internal/imaging"
)

// DefaultConcurrency is the number of classification calls per batch.
const DefaultConcurrency = 3

// Classifier turns a photo thumbnail into an analysis record.
type Classifier interface {
	Classify(ctx context.Context, photo album.PhotoInput, thumb []byte, mimeType string) (album.Analysis, error)
}

// Options tunes an Analyzer.
type Options struct {
	Concurrency           int
	Limiter               *rate.Limiter
	ThumbnailMaxDimension int
}

// Analyzer runs the analysis stage.
type Analyzer struct {
	fetcher    fetch.Fetcher
	classifier Classifier
	opts       Options
}

// New returns an Analyzer. A nil classifier yields synthetic analyses for
// every photo (dimensions and EXIF are still read).
func New(fetcher fetch.Fetcher, classifier Classifier, opts Options) *Analyzer {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.ThumbnailMaxDimension < 1 {
		opts.ThumbnailMaxDimension = imaging.DefaultThumbnailMaxDimension
	}
	return &Analyzer{fetcher: fetcher, classifier: classifier, opts: opts}
}

// Analyze classifies every photo. The result has the same length and order as
// photos.
func (a *Analyzer) Analyze(ctx context.Context, photos []album.PhotoInput) []album.AnalyzedPhoto {
	start := time.Now()

	results := batch.Run(ctx, photos, batch.Options{
		Size:    a.opts.Concurrency,
		Limiter: a.opts.Limiter,
		Name:    "analyze",
	}, a.analyzeOne)

	out := make([]album.AnalyzedPhoto, len(photos))
	synthetic := 0
	for i, r := range results {
		if r.Err != nil {
			log.Warn().
				Err(r.Err).
				Str("photo", photos[i].ID).
				Msg("Photo analysis failed, using default analysis")
			out[i] = Default(photos[i])
			synthetic++
			continue
		}
		out[i] = r.Value
		if r.Value.Synthetic {
			synthetic++
		}
	}

	log.Info().
		Int("photos", len(photos)).
		Int("synthetic", synthetic).
		Dur("duration", time.Since(start)).
		Msg("Photo analysis complete")

	return out
}

// analyzeOne errors only when the photo cannot be fetched or decoded. Later
// failures keep the default analysis built from the corrected dimensions.
func (a *Analyzer) analyzeOne(ctx context.Context, photo album.PhotoInput) (album.AnalyzedPhoto, error) {
	data, err := a.fetcher.Fetch(ctx, photo.SourceURL)
	if err != nil {
		return album.AnalyzedPhoto{}, fmt.Errorf("fetch: %w", err)
	}

	w, h, _, err := imaging.Config(data)
	if err != nil {
		return album.AnalyzedPhoto{}, err
	}
	corrected := photo
	corrected.Width, corrected.Height = w, h

	ap := Default(corrected)
	if md, err := imaging.ReadMetadata(data); err == nil {
		ap.TakenAt = md.TakenAt
		ap.Camera = md.Camera
	} else {
		log.Debug().Err(err).Str("photo", photo.ID).Msg("No EXIF metadata")
	}

	if a.classifier == nil {
		return ap, nil
	}

	thumb, mimeType, err := imaging.Thumbnail(data, a.opts.ThumbnailMaxDimension)
	if err != nil {
		log.Warn().Err(err).Str("photo", photo.ID).Msg("Thumbnail failed, keeping default analysis")
		return ap, nil
	}

	analysis, err := a.classifier.Classify(ctx, corrected, thumb, mimeType)
	if err != nil {
		log.Warn().Err(err).Str("photo", photo.ID).Msg("Classification failed, keeping default analysis")
		return ap, nil
	}

	ap.Analysis = Normalize(analysis, corrected)
	ap.Synthetic = false
	log.Debug().
		Str("photo", photo.ID).
		Str("type", string(ap.Analysis.Type)).
		Str("quality", string(ap.Analysis.Quality)).
		Msg("Photo classified")
	return ap, nil
}

// Default builds the synthetic analysis used when classification is not
// possible: contextual, good quality, slot class from the raw dimensions.
func Default(photo album.PhotoInput) album.AnalyzedPhoto {
	return album.AnalyzedPhoto{
		PhotoInput: photo,
		IsPortrait: album.IsPortrait(photo.Width, photo.Height),
		Analysis: album.Analysis{
			Type:          album.TypeContextual,
			Quality:       album.QualityGood,
			SuggestedSlot: album.SlotClassFor(photo.Width, photo.Height),
		},
		Synthetic: true,
	}
}

// Normalize maps unknown enum values from a classifier to the defaults.
func Normalize(a album.Analysis, photo album.PhotoInput) album.Analysis {
	a.Content = strings.TrimSpace(a.Content)
	a.Emotion = strings.TrimSpace(a.Emotion)

	switch album.PhotoType(strings.ToLower(string(a.Type))) {
	case album.TypeKeyMoment, album.TypeContextual, album.TypePortrait, album.TypeDetail, album.TypeLandscapeScene:
		a.Type = album.PhotoType(strings.ToLower(string(a.Type)))
	default:
		a.Type = album.TypeContextual
	}

	switch album.Quality(strings.ToLower(string(a.Quality))) {
	case album.QualityExcellent, album.QualityGood, album.QualityUsable:
		a.Quality = album.Quality(strings.ToLower(string(a.Quality)))
	default:
		a.Quality = album.QualityGood
	}

	switch album.SlotClass(strings.ToLower(string(a.SuggestedSlot))) {
	case album.SlotPortrait, album.SlotLandscape, album.SlotSquare:
		a.SuggestedSlot = album.SlotClass(strings.ToLower(string(a.SuggestedSlot)))
	default:
		a.SuggestedSlot = album.SlotClassFor(photo.Width, photo.Height)
	}
	return a
}
