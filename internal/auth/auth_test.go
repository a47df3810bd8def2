package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGetAPIKeyConfigured(t *testing.T) {
	key, err := GetAPIKey("  test-api-key-12345 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-api-key-12345" {
		t.Errorf("expected trimmed key, got %q", key)
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := GetAPIKey("")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGetCredentialPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := getCredentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".photo-album", "credentials.gpg"); path != want {
		t.Errorf("expected path %q, got %q", want, path)
	}
}

func TestGetPassphrasePathSkipsInsecureFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := filepath.Join(home, ".photo-album", ".gpg-passphrase")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := getPassphrasePath(); got != "" {
		t.Errorf("insecure passphrase file used: %q", got)
	}

	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}
	if got := getPassphrasePath(); got != path {
		t.Errorf("getPassphrasePath() = %q, want %q", got, path)
	}
}
