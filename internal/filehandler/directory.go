package filehandler

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photo-album-pipeline/internal/album"
)

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int

	// Limit caps the number of photos returned. 0 = unlimited.
	Limit int
}

// ScanPhotos walks dirPath for supported photos and returns them as pipeline
// inputs with file:// source URLs. Symlinks to files are followed; symlinks
// to directories are skipped. Photos are ordered by path, which is the upload
// order the planner sees.
func ScanPhotos(dirPath string, opts ScanOptions) ([]album.PhotoInput, error) {
	log.Info().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Int("limit", opts.Limit).
		Msg("Scanning directory for photos")

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dirPath)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseDepth := strings.Count(absPath, string(os.PathSeparator))

	var paths []string
	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if opts.MaxDepth > 0 && d.IsDir() {
			if strings.Count(path, string(os.PathSeparator))-baseDepth >= opts.MaxDepth {
				return fs.SkipDir
			}
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to resolve symlink, skipping")
				return nil
			}
			if target.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping symlink to directory")
				return nil
			}
		}

		if IsImage(filepath.Ext(d.Name())) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// WalkDir is lexical already; sorting keeps the limit deterministic
	// across platforms.
	sort.Strings(paths)
	limitReached := false
	if opts.Limit > 0 && len(paths) > opts.Limit {
		paths = paths[:opts.Limit]
		limitReached = true
	}

	photos := make([]album.PhotoInput, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(absPath, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		photos = append(photos, album.PhotoInput{
			ID:        PhotoID(rel),
			SourceURL: FileURL(path),
		})
	}

	logEvent := log.Info().
		Int("total_photos", len(photos)).
		Str("directory", dirPath)
	if limitReached {
		logEvent.Bool("limit_reached", true)
	}
	logEvent.Msg("Directory scan complete")

	return photos, nil
}

// FileURL returns the file:// URL for an absolute path.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
