package jobs

import (
	"net/http"
	"strings"
)

// ParseRoute extracts the job ID and action from a URL path like
// /api/album/{id}/{action}. apiPrefix should be like "/api/album/", idPrefix
// like "album-". IDs given without the prefix are normalized to carry it.
func ParseRoute(path, apiPrefix, idPrefix string) (jobID, action string, ok bool) {
	rest, found := strings.CutPrefix(path, apiPrefix)
	if !found {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	jobID = parts[0]
	if !strings.HasPrefix(jobID, idPrefix) {
		jobID = idPrefix + jobID
	}
	return jobID, parts[1], true
}

// CheckOwnership verifies the sessionId query param matches the job's session ID.
func CheckOwnership(r *http.Request, jobSessionID string) bool {
	sessionID := r.URL.Query().Get("sessionId")
	return sessionID != "" && sessionID == jobSessionID
}
