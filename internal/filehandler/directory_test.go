package filehandler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".jpg", true},
		{".JPEG", true},
		{".png", true},
		{".webp", true},
		{".heic", false},
		{".mp4", false},
		{".txt", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsImage(tt.ext); got != tt.expected {
				t.Errorf("IsImage(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestScanPhotos(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.jpg"))
	touch(t, filepath.Join(dir, "a.PNG"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "day2", "c.webp"))
	touch(t, filepath.Join(dir, "day2", "deeper", "d.jpg"))

	photos, err := ScanPhotos(dir, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanPhotos() error: %v", err)
	}
	var ids []string
	for _, p := range photos {
		ids = append(ids, p.ID)
		if !strings.HasPrefix(p.SourceURL, "file://") {
			t.Errorf("SourceURL = %q, want file:// URL", p.SourceURL)
		}
	}
	if got := strings.Join(ids, ","); got != "a,b,day2/c,day2/deeper/d" {
		t.Errorf("ids = %s", got)
	}

	photos, err = ScanPhotos(dir, ScanOptions{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 2 {
		t.Errorf("MaxDepth 1 found %d photos, want 2", len(photos))
	}

	photos, err = ScanPhotos(dir, ScanOptions{Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 3 {
		t.Errorf("Limit 3 found %d photos", len(photos))
	}
}

func TestScanPhotos_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.jpg")
	touch(t, file)

	if _, err := ScanPhotos(file, ScanOptions{}); err == nil {
		t.Error("expected error for a file path")
	}
	if _, err := ScanPhotos(filepath.Join(dir, "missing"), ScanOptions{}); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestFileURL(t *testing.T) {
	if got := FileURL("/tmp/my photos/a.jpg"); got != "file:///tmp/my%20photos/a.jpg" {
		t.Errorf("FileURL() = %q", got)
	}
}
