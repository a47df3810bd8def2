// Package jobutil provides shared helpers for album job lifecycle operations.
//
// Fail is used by both the worker (fatal pipeline errors) and the status API
// (jobs that exceeded their deadline) to log an error and persist the failed
// status.
package jobutil

import (
	"context"
	"errors"

	"github.com/fpang/photo-album-pipeline/internal/store"
	"github.com/rs/zerolog/log"
)

// Fail logs the error and moves job to failed with msg. A job that already
// finished is left untouched and reported as nil error: another writer got
// there first.
func Fail(ctx context.Context, jobs store.JobStore, job *store.AlbumJob, msg string) error {
	log.Error().
		Str("job", job.ID).
		Str("sessionId", job.SessionID).
		Str("error", msg).
		Msg("Job failed")

	job.Status = store.StatusFailed
	job.Error = msg
	err := jobs.UpdateAlbumJob(ctx, job)
	if errors.Is(err, store.ErrInvalidTransition) {
		log.Warn().Str("job", job.ID).Msg("Job already finished, failure not recorded")
		return nil
	}
	return err
}
