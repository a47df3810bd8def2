package albumapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// withOriginVerify rejects requests lacking the x-origin-verify header the
// CDN injects. An empty secret disables the check.
func withOriginVerify(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret != "" && r.Header.Get("x-origin-verify") != secret {
			log.Warn().Str("path", r.URL.Path).Msg("Blocked request: missing or invalid x-origin-verify header")
			httpError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// withMetrics emits per-request latency and count.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sr, r)

		s.recorder().
			Dimension("Endpoint", normalizeEndpoint(r.URL.Path)).
			Since("RequestLatencyMs", start).
			Count("RequestCount").
			Property("method", r.Method).
			Property("statusCode", sr.statusCode).
			Flush()
	})
}

// normalizeEndpoint maps request paths to low-cardinality endpoint names.
func normalizeEndpoint(path string) string {
	switch {
	case path == "/api/health", path == "/api/album/start":
		return path
	case strings.HasPrefix(path, "/api/album/") && strings.HasSuffix(path, "/status"):
		return "/api/album/{id}/status"
	default:
		return "other"
	}
}
