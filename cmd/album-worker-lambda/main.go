// Package main provides the album worker Lambda.
//
// The worker is invoked asynchronously by the album API Lambda with
// InvocationType=Event. It runs the whole generation pipeline for one job:
// analysis, storyboard, backgrounds, page composition and PDF assembly,
// recording progress on the job record as it goes.
//
// Event format:
//
//	{
//	  "type": "album.generate",
//	  "jobId": "album-xxx",
//	  "sessionId": "uuid",
//	  "photos": [{"id": "...", "sourceUrl": "...", "width": 0, "height": 0}],
//	  "questionnaire": {"occasion": "...", "style": "..."},
//	  "pageCount": 20,
//	  "isSample": false,
//	  "groupings": [["id1", "id2"]],
//	  "format": "print_20x20",
//	  "bleedMm": 3
//	}
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/chat"
	"github.com/fpang/photo-album-pipeline/internal/config"
	"github.com/fpang/photo-album-pipeline/internal/lambdaboot"
	"github.com/fpang/photo-album-pipeline/internal/logging"
	"github.com/fpang/photo-album-pipeline/internal/pipeline"
)

var coldStart = true

// Initialized at cold start.
var (
	cfg          *config.Config
	orchestrator *pipeline.Orchestrator
)

func init() {
	initStart := time.Now()
	logging.Init()

	var err error
	cfg, _, err = config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	aws := lambdaboot.InitAWS()
	objects := lambdaboot.InitS3(aws.Config, cfg.AWS.Bucket)
	jobs := lambdaboot.InitDynamo(aws.Config, cfg.AWS.Table)

	apiKey := lambdaboot.LoadGeminiKey(context.Background(), aws.SSM, cfg.AWS.GeminiKeyParam)
	client, err := chat.NewClient(context.Background(), apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	ai := chat.New(client, chat.Models{
		Text:   cfg.Gemini.TextModel,
		Vision: cfg.Gemini.VisionModel,
		Image:  cfg.Gemini.ImageModel,
	}, nil)

	orchestrator = pipeline.Build(cfg, jobs, objects, ai, nil)

	logging.NewStartupLogger("album-worker-lambda").
		CommitHash(commitHash).
		BuildTime(buildTime).
		S3Bucket("albums", cfg.AWS.Bucket).
		DynamoTable("jobs", cfg.AWS.Table).
		SSMParam("geminiApiKey", cfg.AWS.GeminiKeyParam).
		Feature("aiBackgrounds", cfg.Gemini.BackgroundsEnabled).
		Config("textModel", cfg.Gemini.TextModel).
		Config("imageModel", cfg.Gemini.ImageModel).
		Config("defaultFormat", cfg.Pipeline.DefaultFormat).
		Config("jobTimeout", cfg.JobTimeout().String()).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	lambda.Start(handler)
}

func handler(ctx context.Context, event pipeline.GenerateEvent) error {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "album-worker-lambda").Msg("Cold start, first invocation")
	}
	log.Info().
		Str("type", event.Type).
		Str("sessionId", event.SessionID).
		Str("jobId", event.JobID).
		Int("photoCount", len(event.Photos)).
		Msg("Worker Lambda invoked")

	if event.Type != pipeline.EventTypeGenerate {
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if event.BleedMM == 0 {
		event.BleedMM = cfg.Pipeline.BleedMM
	}
	req, err := event.Request(cfg.Pipeline.DefaultFormat)
	if err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.JobTimeout())
	defer cancel()

	job, err := orchestrator.Run(ctx, req)
	if err != nil {
		// The job record already carries the failure. Returning nil keeps the
		// async invoke from retrying a job that cannot be re-run.
		log.Error().Err(err).Str("jobId", event.JobID).Msg("Album generation failed")
		return nil
	}
	log.Info().
		Str("jobId", job.ID).
		Int("pages", job.PagesDone).
		Str("resultRef", job.ResultRef).
		Msg("Album generation complete")
	return nil
}
