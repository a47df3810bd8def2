// Package main provides the album API Lambda.
//
// Routes (behind CloudFront, origin-verified):
//
//	GET  /api/health
//	POST /api/album/start             creates a job and dispatches the worker
//	GET  /api/album/{id}/status?sessionId=   polls job status and the PDF download URL
package main

import (
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/albumapi"
	"github.com/fpang/photo-album-pipeline/internal/config"
	"github.com/fpang/photo-album-pipeline/internal/lambdaboot"
	"github.com/fpang/photo-album-pipeline/internal/logging"
)

var server *albumapi.Server

func init() {
	initStart := time.Now()
	logging.Init()

	cfg, _, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.AWS.WorkerFunction == "" {
		log.Fatal().Str("envVar", "ALBUM_WORKER_FUNCTION").Msg("Worker function is required")
	}

	aws := lambdaboot.InitAWS()
	objects := lambdaboot.InitS3(aws.Config, cfg.AWS.Bucket)
	jobs := lambdaboot.InitDynamo(aws.Config, cfg.AWS.Table)
	dispatcher := albumapi.NewLambdaDispatcher(lambdaboot.InitLambda(aws.Config), cfg.AWS.WorkerFunction)

	originSecret := os.Getenv("ORIGIN_VERIFY_SECRET")
	if originSecret == "" {
		log.Warn().Msg("ORIGIN_VERIFY_SECRET not set, origin verification disabled")
	}

	server = albumapi.NewServer(jobs, dispatcher, objects, albumapi.Options{
		DefaultFormat: cfg.Pipeline.DefaultFormat,
		JobTimeout:    cfg.JobTimeout(),
		PresignExpiry: cfg.PresignExpiry(),
		OriginSecret:  originSecret,
	})

	logging.NewStartupLogger("album-api-lambda").
		CommitHash(commitHash).
		BuildTime(buildTime).
		S3Bucket("albums", cfg.AWS.Bucket).
		DynamoTable("jobs", cfg.AWS.Table).
		LambdaFunc("worker", cfg.AWS.WorkerFunction).
		Feature("originVerify", originSecret != "").
		Config("defaultFormat", cfg.Pipeline.DefaultFormat).
		Config("jobTimeout", cfg.JobTimeout().String()).
		Config("presignExpiry", cfg.PresignExpiry().String()).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(server.Handler())
	lambda.Start(adapter.ProxyWithContext)
}
