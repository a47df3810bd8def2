// Package metrics emits CloudWatch Embedded Metric Format (EMF) documents for
// the album pipeline. Each document is one JSON line on stdout that CloudWatch
// Logs turns into metrics without any API calls.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Namespace is the CloudWatch namespace for every pipeline metric.
const Namespace = "AlbumPipeline"

// Metric names.
const (
	StageLatencyMs      = "StageLatencyMs"
	PhotosAnalyzed      = "PhotosAnalyzed"
	SyntheticAnalyses   = "SyntheticAnalyses"
	BackgroundFallbacks = "BackgroundFallbacks"
	PagesComposed       = "PagesComposed"
	PagesSkipped        = "PagesSkipped"
	GeminiAPICalls      = "GeminiApiCalls"
	GeminiAPIErrors     = "GeminiApiErrors"
	GeminiAPILatencyMs  = "GeminiApiLatencyMs"
	GeminiInputTokens   = "GeminiInputTokens"
	GeminiOutputTokens  = "GeminiOutputTokens"
	JobsFailed          = "JobsFailed"
	JobsCompleted       = "JobsCompleted"
)

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Recorder accumulates dimensions, metrics and properties for one flush.
// It is not safe for concurrent use; create one per operation.
type Recorder struct {
	namespace  string
	out        io.Writer
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]float64
	properties map[string]any
}

var (
	functionName string
	initOnce     sync.Once
)

func initFunctionName() {
	functionName = os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
}

// For returns a pipeline Recorder in Namespace writing to out, or to stdout
// when out is nil.
func For(out io.Writer) *Recorder {
	if out == nil {
		out = os.Stdout
	}
	return NewWithWriter(Namespace, out)
}

// New creates a Recorder writing to stdout. Inside Lambda the FunctionName
// dimension is added automatically.
func New(namespace string) *Recorder {
	return NewWithWriter(namespace, os.Stdout)
}

// NewWithWriter creates a Recorder writing to out.
func NewWithWriter(namespace string, out io.Writer) *Recorder {
	initOnce.Do(initFunctionName)
	r := &Recorder{
		namespace:  namespace,
		out:        out,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]float64),
		properties: make(map[string]any),
	}
	if functionName != "" {
		r.dimensions["FunctionName"] = functionName
	}
	return r
}

// Dimension adds an indexed dimension.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric sets a named metric value.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count records a count of 1.
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Add increments a count metric by n, creating it at zero if needed.
func (r *Recorder) Add(name string, n int) *Recorder {
	return r.Metric(name, r.values[name]+float64(n), UnitCount)
}

// Since records the elapsed milliseconds from start.
func (r *Recorder) Since(name string, start time.Time) *Recorder {
	return r.Metric(name, float64(time.Since(start).Milliseconds()), UnitMilliseconds)
}

// Property adds a searchable non-metric field.
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the EMF document as a single line. Recorders with no metrics
// write nothing. The Recorder must not be reused afterwards.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	doc := make(map[string]any, len(r.dimensions)+len(r.values)+len(r.properties)+1)

	metricDefs := make([]metricDef, 0, len(r.metrics))
	for _, m := range r.metrics {
		metricDefs = append(metricDefs, m)
	}
	sort.Slice(metricDefs, func(i, j int) bool { return metricDefs[i].Name < metricDefs[j].Name })
	dimKeys := make([]string, 0, len(r.dimensions))
	for k := range r.dimensions {
		dimKeys = append(dimKeys, k)
	}
	sort.Strings(dimKeys)

	doc["_aws"] = emfDirective{
		Timestamp: time.Now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{dimKeys},
			Metrics:    metricDefs,
		}},
	}
	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emf: failed to marshal metrics: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, string(data))
}
