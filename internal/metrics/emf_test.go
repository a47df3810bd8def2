package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNew_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "album-worker"
	defer func() { functionName = "" }()

	r := New(Namespace)
	if r.namespace != Namespace {
		t.Errorf("namespace = %s, want %s", r.namespace, Namespace)
	}
	if r.dimensions["FunctionName"] != "album-worker" {
		t.Errorf("FunctionName dimension = %q", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""

	var buf bytes.Buffer
	NewWithWriter(Namespace, &buf).
		Dimension("Stage", "compose").
		Metric(StageLatencyMs, 1234.5, UnitMilliseconds).
		Add(PagesComposed, 3).
		Add(PagesComposed, 2).
		Property("jobId", "job-123").
		Flush()

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("EMF output must be a single line: %q", line)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(line), &doc); err != nil {
		t.Fatalf("failed to parse EMF output: %v\n%s", err, line)
	}

	aws, ok := doc["_aws"].(map[string]any)
	if !ok {
		t.Fatal("missing _aws directive")
	}
	cw := aws["CloudWatchMetrics"].([]any)[0].(map[string]any)
	if cw["Namespace"] != Namespace {
		t.Errorf("Namespace = %v", cw["Namespace"])
	}
	if doc["Stage"] != "compose" {
		t.Errorf("Stage = %v", doc["Stage"])
	}
	if doc[StageLatencyMs] != 1234.5 {
		t.Errorf("%s = %v", StageLatencyMs, doc[StageLatencyMs])
	}
	if doc[PagesComposed] != float64(5) {
		t.Errorf("%s = %v, want 5", PagesComposed, doc[PagesComposed])
	}
	if doc["jobId"] != "job-123" {
		t.Errorf("jobId = %v", doc["jobId"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("Test", &buf).Dimension("Stage", "x").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestRecorder_Since(t *testing.T) {
	rec := NewWithWriter("Test", &bytes.Buffer{})
	rec.Since(StageLatencyMs, time.Now().Add(-50*time.Millisecond))

	if rec.metrics[StageLatencyMs].Unit != UnitMilliseconds {
		t.Errorf("unit = %q", rec.metrics[StageLatencyMs].Unit)
	}
	if rec.values[StageLatencyMs] < 50 {
		t.Errorf("latency = %v, want >= 50", rec.values[StageLatencyMs])
	}
}

func TestRecorder_Count(t *testing.T) {
	rec := NewWithWriter("Test", &bytes.Buffer{}).Count(GeminiAPIErrors)
	if rec.values[GeminiAPIErrors] != 1 || rec.metrics[GeminiAPIErrors].Unit != UnitCount {
		t.Errorf("Count() = %v %q", rec.values[GeminiAPIErrors], rec.metrics[GeminiAPIErrors].Unit)
	}
}
