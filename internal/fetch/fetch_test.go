package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPFetcher_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("photo-bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)

	data, err := f.Fetch(context.Background(), srv.URL+"/a.jpg?X-Amz-Signature=secret")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "photo-bytes" {
		t.Errorf("Fetch() = %q", data)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.jpg")
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestHTTPFetcher_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client(), MaxBytes: 10}
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected size limit error")
	}
}

func TestHTTPFetcher_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewHTTPFetcher(time.Second)
	for _, src := range []string{path, "file://" + path} {
		data, err := f.Fetch(context.Background(), src)
		if err != nil {
			t.Fatalf("Fetch(%q) error: %v", src, err)
		}
		if string(data) != "local" {
			t.Errorf("Fetch(%q) = %q", src, data)
		}
	}

	if _, err := f.Fetch(context.Background(), "ftp://example.com/a.jpg"); err == nil {
		t.Error("expected unsupported scheme error")
	}
	if _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Error("expected error for empty URL")
	}
}

type countingFetcher struct {
	calls int32
	err   error
}

func (c *countingFetcher) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return []byte(sourceURL), nil
}

func TestCachingFetcher(t *testing.T) {
	inner := &countingFetcher{}
	f := NewCachingFetcher(inner, time.Minute)

	for i := 0; i < 3; i++ {
		data, err := f.Fetch(context.Background(), "https://example.com/a.jpg")
		if err != nil || string(data) != "https://example.com/a.jpg" {
			t.Fatalf("Fetch() = %q, %v", data, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	f.Flush()
	f.Fetch(context.Background(), "https://example.com/a.jpg")
	if inner.calls != 2 {
		t.Errorf("inner calls after Flush = %d, want 2", inner.calls)
	}
}

func TestCachingFetcher_ErrorsNotCached(t *testing.T) {
	boom := errors.New("boom")
	inner := &countingFetcher{err: boom}
	f := NewCachingFetcher(inner, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background(), "x"); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}
var _ Flusher = (*CachingFetcher)(nil)
