// Package fetch retrieves photo bytes from the resolved source URLs handed to
// the pipeline.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// DefaultMaxBytes caps a single download. Camera originals are well below it.
const DefaultMaxBytes = 64 << 20

// Fetcher returns the raw bytes behind a photo source URL.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) ([]byte, error)
}

// HTTPFetcher fetches http(s) URLs with a plain GET and reads file:// URLs and
// bare paths from the local filesystem.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: DefaultMaxBytes,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("empty source URL")
	}

	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL %q: %w", sourceURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, sourceURL)
	case "file":
		return os.ReadFile(u.Path)
	case "":
		return os.ReadFile(sourceURL)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", redact(sourceURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %d", redact(sourceURL), resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("photo exceeds %d bytes", limit)
	}
	return data, nil
}

// redact strips the query string, which carries presigned credentials.
func redact(sourceURL string) string {
	if i := strings.IndexByte(sourceURL, '?'); i != -1 {
		return sourceURL[:i]
	}
	return sourceURL
}

// Flusher is a Fetcher holding job-scoped state that can be dropped.
type Flusher interface {
	Flush()
}

// CachingFetcher memoizes another Fetcher so the compose stage does not
// download photos the analyze stage already fetched.
type CachingFetcher struct {
	next  Fetcher
	cache *cache.Cache
}

// NewCachingFetcher wraps next with an in-memory cache whose entries expire
// after ttl.
func NewCachingFetcher(next Fetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Fetch implements Fetcher. Errors are not cached.
func (c *CachingFetcher) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	if v, ok := c.cache.Get(sourceURL); ok {
		log.Debug().Str("url", redact(sourceURL)).Msg("Photo cache hit")
		return v.([]byte), nil
	}

	data, err := c.next.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(sourceURL, data)
	return data, nil
}

// Flush drops every cached entry. The orchestrator calls it when a job ends.
func (c *CachingFetcher) Flush() {
	c.cache.Flush()
}
