package jobutil

import (
	"context"
	"testing"

	"github.com/fpang/photo-album-pipeline/internal/store"
)

func TestFail(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	job := &store.AlbumJob{ID: "album-1", SessionID: "s"}
	if err := s.CreateAlbumJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	if err := Fail(ctx, s, job, "boom"); err != nil {
		t.Fatalf("Fail() error: %v", err)
	}
	got, _ := s.GetAlbumJob(ctx, "s", "album-1")
	if got.Status != store.StatusFailed || got.Error != "boom" {
		t.Errorf("job = %+v, want failed with error", got)
	}
}

func TestFail_AlreadyDone(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	job := &store.AlbumJob{ID: "album-1", SessionID: "s"}
	_ = s.CreateAlbumJob(ctx, job)
	job.Status = store.StatusDone
	_ = s.UpdateAlbumJob(ctx, job)

	stale := &store.AlbumJob{ID: "album-1", SessionID: "s", Status: store.StatusProcessing}
	if err := Fail(ctx, s, stale, "late timeout"); err != nil {
		t.Errorf("Fail() on finished job = %v, want nil", err)
	}
	got, _ := s.GetAlbumJob(ctx, "s", "album-1")
	if got.Status != store.StatusDone {
		t.Errorf("status = %s, want done preserved", got.Status)
	}
}

func TestFail_UnknownJob(t *testing.T) {
	s := store.NewMemoryStore()
	err := Fail(context.Background(), s, &store.AlbumJob{ID: "nope", SessionID: "s"}, "x")
	if err == nil {
		t.Error("expected error for unknown job")
	}
}
