package albumapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/pipeline"
)

// Dispatcher hands a generate event to the worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, event pipeline.GenerateEvent) error
}

// LambdaInvoker is the subset of *lambda.Client used for dispatch.
type LambdaInvoker interface {
	Invoke(ctx context.Context, in *lambdasvc.InvokeInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.InvokeOutput, error)
}

// LambdaDispatcher invokes the worker Lambda asynchronously.
type LambdaDispatcher struct {
	client       LambdaInvoker
	functionName string
}

// NewLambdaDispatcher returns a dispatcher for the named worker function.
func NewLambdaDispatcher(client LambdaInvoker, functionName string) *LambdaDispatcher {
	return &LambdaDispatcher{client: client, functionName: functionName}
}

// Dispatch sends event with InvocationType=Event so the API returns without
// waiting for the worker.
func (d *LambdaDispatcher) Dispatch(ctx context.Context, event pipeline.GenerateEvent) error {
	if d.client == nil || d.functionName == "" {
		return errors.New("worker lambda not configured")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal worker event: %w", err)
	}

	log.Debug().Int("payloadSize", len(payload)).Msg("Invoking worker Lambda asynchronously")

	_, err = d.client.Invoke(ctx, &lambdasvc.InvokeInput{
		FunctionName:   aws.String(d.functionName),
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("invoke worker lambda: %w", err)
	}

	log.Debug().
		Str("type", event.Type).
		Str("jobId", event.JobID).
		Msg("Worker Lambda invoked asynchronously")
	return nil
}
