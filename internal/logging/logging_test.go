package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStartupLogger_JSON(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Configure("info", "json", &buf)
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "album-worker")

	NewStartupLogger("album-worker-lambda").
		S3Bucket("media", "album-bucket").
		DynamoTable("jobs", "album-jobs").
		Feature("backgrounds", true).
		Config("defaultFormat", "print_20x20").
		Log()

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not one JSON event: %v\n%s", err, buf.String())
	}
	lambda, _ := event["lambda"].(map[string]any)
	if lambda["name"] != "album-worker-lambda" || lambda["functionName"] != "album-worker" {
		t.Errorf("lambda = %v", lambda)
	}
	res, _ := event["resources"].(map[string]any)
	if buckets, _ := res["s3Buckets"].(map[string]any); buckets["media"] != "album-bucket" {
		t.Errorf("resources = %v", res)
	}
	if feats, _ := event["features"].(map[string]any); feats["backgrounds"] != true {
		t.Errorf("features = %v", event["features"])
	}
}

func TestStartupLogger_SkipsEmptyResources(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Configure("info", "json", &buf)

	NewStartupLogger("album-cli").S3Bucket("albums", "").Log()

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not one JSON event: %v", err)
	}
	if _, ok := event["resources"]; ok {
		t.Errorf("empty bucket name should not be logged: %v", event["resources"])
	}
}
