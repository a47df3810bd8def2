package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger from environment variables.
// ALBUM_LOG_LEVEL controls the level: debug, info, warn, error (default: info).
// ALBUM_LOG_FORMAT selects console or json output; inside Lambda the default
// is json so CloudWatch can index fields.
func Init() {
	format := os.Getenv("ALBUM_LOG_FORMAT")
	if format == "" && os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		format = "json"
	}
	Configure(os.Getenv("ALBUM_LOG_LEVEL"), format, os.Stderr)
}

// Configure sets the global level and output. Unknown levels mean info and
// any format other than json means console.
func Configure(level, format string, out io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if strings.EqualFold(format, "json") {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
