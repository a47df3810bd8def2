package jobs

import (
	"strings"

	"github.com/google/uuid"
)

// AlbumPrefix prefixes every album job ID.
const AlbumPrefix = "album-"

// GenerateID creates a new random job ID with the given prefix.
// The prefix should include a trailing dash, e.g. "album-".
func GenerateID(prefix string) string {
	return prefix + uuid.NewString()
}

// ValidID reports whether id has the prefix followed by a UUID.
func ValidID(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
