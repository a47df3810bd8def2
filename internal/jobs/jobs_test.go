package jobs

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID(AlbumPrefix)
	b := GenerateID(AlbumPrefix)
	if a == b {
		t.Error("IDs should be unique")
	}
	if !strings.HasPrefix(a, AlbumPrefix) {
		t.Errorf("ID %q missing prefix", a)
	}
	if !ValidID(a, AlbumPrefix) {
		t.Errorf("ValidID(%q) = false", a)
	}
	if ValidID("album-xyz", AlbumPrefix) || ValidID(strings.TrimPrefix(a, AlbumPrefix), AlbumPrefix) {
		t.Error("ValidID accepted a malformed ID")
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path       string
		wantID     string
		wantAction string
		wantOK     bool
	}{
		{"/api/album/album-123/status", "album-123", "status", true},
		{"/api/album/123/status", "album-123", "status", true},
		{"/api/album/album-123/status/", "album-123", "status", true},
		{"/api/album/album-123", "", "", false},
		{"/api/album/", "", "", false},
		{"/api/album/a/b/c", "", "", false},
		{"/api/other/album-1/status", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id, action, ok := ParseRoute(tt.path, "/api/album/", AlbumPrefix)
			if ok != tt.wantOK || id != tt.wantID || action != tt.wantAction {
				t.Errorf("ParseRoute(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.path, id, action, ok, tt.wantID, tt.wantAction, tt.wantOK)
			}
		})
	}
}

func TestCheckOwnership(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/album/album-1/status?sessionId=s1", nil)
	if !CheckOwnership(r, "s1") {
		t.Error("matching session rejected")
	}
	if CheckOwnership(r, "s2") {
		t.Error("foreign session accepted")
	}
	empty := httptest.NewRequest("GET", "/api/album/album-1/status", nil)
	if CheckOwnership(empty, "") {
		t.Error("missing sessionId accepted")
	}
}
