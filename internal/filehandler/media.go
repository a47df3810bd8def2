// Package filehandler discovers local photos for the album CLI.
package filehandler

import (
	"path/filepath"
	"strings"
)

// SupportedImageExtensions maps the photo extensions the pipeline can decode
// to their MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IsImage reports whether ext (with leading dot, any case) is a supported photo.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// PhotoID derives a stable photo ID from a path relative to the scan root:
// slash-separated, extension dropped.
func PhotoID(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
