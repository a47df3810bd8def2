package logging

import (
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resource kinds reported under "resources" in the startup event.
const (
	resourceS3       = "s3Buckets"
	resourceDynamo   = "dynamoTables"
	resourceSSM      = "ssmParams"
	resourceFunction = "lambdaFunctions"
)

// StartupLogger builds the one cold-start event a Lambda emits: its identity,
// the AWS resources it talks to, feature flags and non-secret settings.
type StartupLogger struct {
	name         string
	commitHash   string
	buildTime    string
	initDuration time.Duration

	resources map[string]map[string]string
	features  map[string]bool
	settings  map[string]string
}

// NewStartupLogger creates a StartupLogger for the named Lambda.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:      name,
		resources: make(map[string]map[string]string),
		features:  make(map[string]bool),
		settings:  make(map[string]string),
	}
}

// CommitHash sets the git commit baked in at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// BuildTime sets the build timestamp baked in at build time.
func (s *StartupLogger) BuildTime(t string) *StartupLogger {
	s.buildTime = t
	return s
}

func (s *StartupLogger) resource(kind, label, name string) *StartupLogger {
	if name == "" {
		return s
	}
	if s.resources[kind] == nil {
		s.resources[kind] = make(map[string]string)
	}
	s.resources[kind][label] = name
	return s
}

// S3Bucket records a bucket. Empty names are skipped.
func (s *StartupLogger) S3Bucket(label, name string) *StartupLogger {
	return s.resource(resourceS3, label, name)
}

// DynamoTable records a table.
func (s *StartupLogger) DynamoTable(label, name string) *StartupLogger {
	return s.resource(resourceDynamo, label, name)
}

// SSMParam records a parameter path. Only the path is logged, never the value.
func (s *StartupLogger) SSMParam(label, path string) *StartupLogger {
	return s.resource(resourceSSM, label, path)
}

// LambdaFunc records a function this Lambda invokes.
func (s *StartupLogger) LambdaFunc(label, name string) *StartupLogger {
	return s.resource(resourceFunction, label, name)
}

// Feature records a boolean flag.
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config records a non-secret setting.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.settings[key] = value
	return s
}

// InitDuration records how long init() took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits the startup event at info level.
func (s *StartupLogger) Log() {
	identity := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH)
	for field, env := range map[string]string{
		"functionName": "AWS_LAMBDA_FUNCTION_NAME",
		"version":      "AWS_LAMBDA_FUNCTION_VERSION",
		"region":       "AWS_REGION",
		"memoryMB":     "AWS_LAMBDA_FUNCTION_MEMORY_SIZE",
		"logLevel":     "ALBUM_LOG_LEVEL",
	} {
		if v := os.Getenv(env); v != "" {
			identity = identity.Str(field, v)
		}
	}
	if s.commitHash != "" {
		identity = identity.Str("commitHash", s.commitHash)
	}
	if s.buildTime != "" {
		identity = identity.Str("buildTime", s.buildTime)
	}

	evt := log.Info().Dict("lambda", identity)

	if len(s.resources) > 0 {
		res := zerolog.Dict()
		for _, kind := range sortedKeys(s.resources) {
			res = res.Dict(kind, stringDict(s.resources[kind]))
		}
		evt = evt.Dict("resources", res)
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for _, k := range sortedKeys(s.features) {
			d = d.Bool(k, s.features[k])
		}
		evt = evt.Dict("features", d)
	}
	if len(s.settings) > 0 {
		evt = evt.Dict("config", stringDict(s.settings))
	}
	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Lambda cold start complete")
}

func stringDict(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for _, k := range sortedKeys(m) {
		d = d.Str(k, m[k])
	}
	return d
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
