// Package storage persists pipeline artifacts (backgrounds, composed pages and
// the final document) behind a small key/value interface.
//
// A ref returned by Put is opaque to callers; it is only ever passed back to
// Get on the same Store or recorded on the job as resultRef.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when nothing is stored under the ref.
var ErrNotFound = errors.New("object not found")

// Store is write-once object storage for pipeline artifacts.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (ref string, err error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// BackgroundKey is where a synthesized page background is stored.
func BackgroundKey(jobID string, pageIndex int, ext string) string {
	return fmt.Sprintf("%s/backgrounds/page-%03d.%s", jobID, pageIndex, ext)
}

// PageKey is where a composed page raster is stored.
func PageKey(jobID string, pageIndex int) string {
	return fmt.Sprintf("%s/pages/page-%03d.jpg", jobID, pageIndex)
}

// DocumentKey is where the assembled album is stored.
func DocumentKey(jobID string) string {
	return jobID + "/album.pdf"
}

// ExtensionFor returns the file extension for an image MIME type.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// DirStore stores objects as files under a root directory. Refs are keys
// relative to the root.
type DirStore struct {
	Root string
}

// NewDirStore creates the root directory if needed.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &DirStore{Root: root}, nil
}

// Put implements Store.
func (d *DirStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := d.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return key, nil
}

// Get implements Store.
func (d *DirStore) Get(_ context.Context, ref string) ([]byte, error) {
	path, err := d.Path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}

// Path resolves a ref to its file path, rejecting refs that escape the root.
func (d *DirStore) Path(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", ref)
	}
	return filepath.Join(d.Root, clean), nil
}

// MemoryStore keeps objects in memory. Used by tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return key, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, ref string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return data, nil
}

// ContentType returns the content type recorded for key.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// Keys returns every stored key with the given prefix.
func (m *MemoryStore) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}
