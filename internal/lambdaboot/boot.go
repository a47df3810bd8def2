// Package lambdaboot provides shared Lambda cold-start bootstrap logic.
//
// Both album Lambdas need some subset of: AWS config, S3, DynamoDB, the
// Lambda invoke client, SSM parameter fetch and startup logging. Each
// Lambda's init() is a short composition of these helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/storage"
	"github.com/fpang/photo-album-pipeline/internal/store"
)

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates the S3-backed object store for bucket. Fatals if bucket is
// empty.
func InitS3(cfg aws.Config, bucket string) *storage.S3Store {
	if bucket == "" {
		log.Fatal().Str("envVar", "ALBUM_BUCKET").Msg("Bucket is required")
	}
	return storage.NewS3Store(s3.NewFromConfig(cfg), bucket)
}

// InitDynamo creates the DynamoDB job store for table. Fatals if table is
// empty.
func InitDynamo(cfg aws.Config, table string) *store.DynamoStore {
	if table == "" {
		log.Fatal().Str("envVar", "ALBUM_TABLE").Msg("DynamoDB table is required")
	}
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), table)
}

// InitLambda creates the Lambda client used to dispatch worker invocations.
func InitLambda(cfg aws.Config) *lambda.Client {
	return lambda.NewFromConfig(cfg)
}

// ParamGetter is the subset of *ssm.Client used to read secrets.
type ParamGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// LoadGeminiKey returns the Gemini API key from GEMINI_API_KEY, or reads it
// from the SSM parameter paramName and exports it. Fatals on error.
func LoadGeminiKey(ctx context.Context, client ParamGetter, paramName string) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil || result.Parameter == nil || result.Parameter.Value == nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to read API key from SSM")
	}
	key := *result.Parameter.Value
	os.Setenv("GEMINI_API_KEY", key)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return key
}
