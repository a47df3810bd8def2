// Package albumapi serves the album start and status endpoints.
//
//	POST /api/album/start                         create a job and dispatch the worker
//	GET  /api/album/{jobId}/status?sessionId=...  poll progress and fetch the result URL
//	GET  /api/health
//
// The status endpoint also enforces the job deadline: a job still processing
// after the timeout is marked failed on the next poll.
package albumapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/document"
	"github.com/fpang/photo-album-pipeline/internal/jobs"
	"github.com/fpang/photo-album-pipeline/internal/jobutil"
	"github.com/fpang/photo-album-pipeline/internal/metrics"
	"github.com/fpang/photo-album-pipeline/internal/pipeline"
	"github.com/fpang/photo-album-pipeline/internal/store"
)

const (
	apiPrefix    = "/api/album/"
	maxBodyBytes = 1 << 20
	maxPageCount = 200
	maxBleedMM   = 10
)

// Presigner turns a stored result reference into a download URL.
type Presigner interface {
	PresignURL(ctx context.Context, ref string, expiry time.Duration) (string, error)
}

// Options configures a Server.
type Options struct {
	DefaultFormat string
	JobTimeout    time.Duration
	PresignExpiry time.Duration
	// OriginSecret, when set, is required in the x-origin-verify header.
	OriginSecret string
	// MetricsOut receives EMF documents. Nil means stdout.
	MetricsOut io.Writer
}

// Server handles the album HTTP API.
type Server struct {
	jobs       store.JobStore
	dispatcher Dispatcher
	presigner  Presigner
	opts       Options
	now        func() time.Time
}

// NewServer returns a Server. presigner may be nil, in which case status
// responses carry the storage reference only.
func NewServer(jobStore store.JobStore, dispatcher Dispatcher, presigner Presigner, opts Options) *Server {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = document.DefaultFormat
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 15 * time.Minute
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = time.Hour
	}
	return &Server{jobs: jobStore, dispatcher: dispatcher, presigner: presigner, opts: opts, now: time.Now}
}

func (s *Server) recorder() *metrics.Recorder {
	return metrics.For(s.opts.MetricsOut)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/album/start", s.handleStart)
	mux.HandleFunc(apiPrefix, s.routeJob)
	return withOriginVerify(s.opts.OriginSecret, s.withMetrics(mux))
}

func (s *Server) routeJob(w http.ResponseWriter, r *http.Request) {
	jobID, action, ok := jobs.ParseRoute(r.URL.Path, apiPrefix, jobs.AlbumPrefix)
	if !ok {
		httpError(w, http.StatusNotFound, "not found")
		return
	}
	switch action {
	case "status":
		s.handleStatus(w, r, jobID)
	default:
		httpError(w, http.StatusNotFound, "not found")
	}
}

type startRequest struct {
	SessionID     string              `json:"sessionId"`
	Photos        []album.PhotoInput  `json:"photos"`
	Questionnaire album.Questionnaire `json:"questionnaire"`
	PageCount     int                 `json:"pageCount"`
	IsSample      bool                `json:"isSample"`
	Groupings     [][]string          `json:"groupings"`
	Format        string              `json:"format"`
	BleedMM       float64             `json:"bleedMm"`
}

func (req startRequest) validate() error {
	if err := uuid.Validate(req.SessionID); err != nil {
		return errors.New("invalid sessionId: must be a UUID")
	}
	if err := pipeline.ValidatePhotos(req.Photos); err != nil {
		return err
	}
	if req.PageCount < 0 || req.PageCount > maxPageCount {
		return fmt.Errorf("pageCount must be between 0 and %d", maxPageCount)
	}
	if req.Format != "" {
		if _, err := document.Lookup(req.Format); err != nil {
			return err
		}
	}
	if req.BleedMM < 0 || req.BleedMM > maxBleedMM {
		return fmt.Errorf("bleedMm must be between 0 and %d", maxBleedMM)
	}
	return nil
}

// POST /api/album/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req startRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("Request body decoding failed")
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		log.Warn().Err(err).Str("sessionId", req.SessionID).Msg("Album start request rejected")
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := req.Format
	if format == "" {
		format = s.opts.DefaultFormat
	}
	job := &store.AlbumJob{
		ID:        jobs.GenerateID(jobs.AlbumPrefix),
		SessionID: req.SessionID,
		Status:    store.StatusProcessing,
		Format:    format,
	}
	ctx := r.Context()
	if err := s.jobs.CreateAlbumJob(ctx, job); err != nil {
		httpError(w, http.StatusInternalServerError, "failed to create job", err.Error())
		return
	}

	event := pipeline.GenerateEvent{
		Type:          pipeline.EventTypeGenerate,
		JobID:         job.ID,
		SessionID:     job.SessionID,
		Photos:        req.Photos,
		Questionnaire: req.Questionnaire,
		PageCount:     req.PageCount,
		IsSample:      req.IsSample,
		Groupings:     req.Groupings,
		Format:        format,
		BleedMM:       req.BleedMM,
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		if ferr := jobutil.Fail(context.WithoutCancel(ctx), s.jobs, job, "failed to start processing"); ferr != nil {
			log.Error().Err(ferr).Str("jobId", job.ID).Msg("Failed to record dispatch failure")
		}
		httpError(w, http.StatusBadGateway, "failed to start processing", err.Error())
		return
	}

	log.Info().
		Str("jobId", job.ID).
		Str("sessionId", job.SessionID).
		Int("photos", len(req.Photos)).
		Int("pageCount", req.PageCount).
		Bool("sample", req.IsSample).
		Msg("Album job dispatched")

	respondJSON(w, http.StatusAccepted, map[string]string{
		"id":     job.ID,
		"status": string(job.Status),
	})
}

type statusResponse struct {
	ID          string       `json:"id"`
	Status      store.Status `json:"status"`
	PagesTotal  int          `json:"pagesTotal"`
	PagesDone   int          `json:"pagesDone"`
	PlanSource  string       `json:"planSource,omitempty"`
	ResultRef   string       `json:"resultRef,omitempty"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// GET /api/album/{jobId}/status?sessionId=...
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	ctx := r.Context()
	job, err := s.jobs.GetAlbumJob(ctx, sessionID, jobID)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to read job status", err.Error())
		return
	}
	if job == nil || !jobs.CheckOwnership(r, job.SessionID) {
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	if job.Status == store.StatusProcessing {
		age := s.now().Sub(time.Unix(job.CreatedAt, 0))
		if age > s.opts.JobTimeout {
			msg := fmt.Sprintf("job timed out after %s", s.opts.JobTimeout)
			if err := jobutil.Fail(ctx, s.jobs, job, msg); err != nil {
				httpError(w, http.StatusInternalServerError, "failed to update job", err.Error())
				return
			}
			// Re-read: the worker may have finished first.
			if latest, err := s.jobs.GetAlbumJob(ctx, sessionID, jobID); err == nil && latest != nil {
				job = latest
			}
		}
	}

	resp := statusResponse{
		ID:         job.ID,
		Status:     job.Status,
		PagesTotal: job.PagesTotal,
		PagesDone:  job.PagesDone,
		PlanSource: job.PlanSource,
		Error:      job.Error,
	}
	if job.Status == store.StatusDone {
		resp.ResultRef = job.ResultRef
		if s.presigner != nil && job.ResultRef != "" {
			url, err := s.presigner.PresignURL(ctx, job.ResultRef, s.opts.PresignExpiry)
			if err != nil {
				log.Warn().Err(err).Str("jobId", job.ID).Msg("Failed to presign result URL")
			} else {
				resp.DownloadURL = url
			}
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
