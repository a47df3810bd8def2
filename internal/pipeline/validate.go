package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fpang/photo-album-pipeline/internal/album"
)

// ErrNoPhotos is returned for a job with an empty photo list.
var ErrNoPhotos = errors.New("no photos provided")

// MaxPhotos bounds a single job.
const MaxPhotos = 500

// ValidatePhotos checks that photos is non-empty and that every entry has a
// unique ID and a source URL.
func ValidatePhotos(photos []album.PhotoInput) error {
	if len(photos) == 0 {
		return ErrNoPhotos
	}
	if len(photos) > MaxPhotos {
		return fmt.Errorf("too many photos: %d (max %d)", len(photos), MaxPhotos)
	}
	seen := make(map[string]bool, len(photos))
	for i, p := range photos {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("photo %d has no id", i)
		}
		if strings.TrimSpace(p.SourceURL) == "" {
			return fmt.Errorf("photo %s has no source URL", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate photo id %s", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
