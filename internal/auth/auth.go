// Package auth resolves the Gemini API key for local runs.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".photo-album"
	credentialFile = "credentials.gpg"
	passphraseFile = ".gpg-passphrase"
)

// ErrNoAPIKey is returned when no key source yields a key.
var ErrNoAPIKey = errors.New("gemini API key not found: set GEMINI_API_KEY, gemini.api_key, or ~/" + credentialDir + "/" + credentialFile)

// GetAPIKey returns the Gemini API key. Priority:
//  1. configured, the value resolved from the config file and GEMINI_API_KEY
//  2. the GPG-encrypted file at ~/.photo-album/credentials.gpg
func GetAPIKey(configured string) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		log.Debug().Msg("Using API key from configuration")
		return key, nil
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}
	log.Debug().Err(err).Msg("No GPG credentials")
	return "", ErrNoAPIKey
}

func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	args := []string{"--decrypt", "--quiet"}
	if pp := getPassphrasePath(); pp != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", pp)
	}
	args = append(args, credPath)

	output, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}

// getPassphrasePath returns the passphrase file for non-interactive
// decryption, looked up next to the credentials and then in the working
// directory. Files readable by group or others are ignored.
func getPassphrasePath() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, credentialDir, passphraseFile))
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, passphraseFile))
	}

	for _, path := range candidates {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if mode := fi.Mode().Perm(); mode&0o077 != 0 {
			log.Warn().
				Str("passphrase_file", path).
				Str("permissions", fmt.Sprintf("%04o", mode)).
				Msg("Passphrase file has insecure permissions (should be 0600); skipping")
			continue
		}
		return path
	}
	return ""
}
