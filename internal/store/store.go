// Package store persists album job records: the progress and outcome of one
// pipeline run, polled by the status API.
//
// Records live in a single DynamoDB table keyed by session: the partition key
// is SESSION#{sessionId} and the sort key ALBUM#{jobId}. A TTL attribute
// (expiresAt) removes records after JobTTL.
//
// Status only moves forward: processing, then done or failed. Both
// implementations reject any update to a job that has already finished.
package store

import (
	"context"
	"errors"
	"time"
)

// JobTTL is how long job records are kept.
const JobTTL = 7 * 24 * time.Hour

// Sentinel errors.
var (
	ErrJobNotFound       = errors.New("album job not found")
	ErrJobExists         = errors.New("album job already exists")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Status is the lifecycle state of an album job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransition reports whether a job in status from may be written with
// status to. A processing job may stay processing (progress updates) or
// finish; a finished job never changes.
func CanTransition(from, to Status) bool {
	if from != StatusProcessing {
		return false
	}
	return to == StatusProcessing || to == StatusDone || to == StatusFailed
}

// AlbumJob is the job record. ID and SessionID are derived from the keys.
type AlbumJob struct {
	ID         string `dynamodbav:"-" json:"id"`
	SessionID  string `dynamodbav:"-" json:"sessionId"`
	Status     Status `dynamodbav:"status" json:"status"`
	PagesTotal int    `dynamodbav:"pagesTotal" json:"pagesTotal"`
	PagesDone  int    `dynamodbav:"pagesDone" json:"pagesDone"`
	ResultRef  string `dynamodbav:"resultRef,omitempty" json:"resultRef,omitempty"`
	PlanSource string `dynamodbav:"planSource,omitempty" json:"planSource,omitempty"`
	Format     string `dynamodbav:"format,omitempty" json:"format,omitempty"`
	Error      string `dynamodbav:"error,omitempty" json:"error,omitempty"`
	CreatedAt  int64  `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  int64  `dynamodbav:"updatedAt" json:"updatedAt"`
}

// JobStore persists album jobs. Implementations are safe for concurrent use.
type JobStore interface {
	// CreateAlbumJob writes a new processing job. It fails with ErrJobExists
	// if the job ID is taken.
	CreateAlbumJob(ctx context.Context, job *AlbumJob) error

	// GetAlbumJob returns nil, nil when the job does not exist.
	GetAlbumJob(ctx context.Context, sessionID, jobID string) (*AlbumJob, error)

	// UpdateAlbumJob replaces the job record. It fails with ErrJobNotFound
	// for unknown jobs and ErrInvalidTransition when the stored job has
	// already finished.
	UpdateAlbumJob(ctx context.Context, job *AlbumJob) error
}
