package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "adpilot-cli"
	keyringUser    = "api-token"

	fallbackFileName = "credentials"
)

var (
	// fallbackMode indicates if we're using file-based fallback (headless systems)
	fallbackMode    bool
	fallbackModeMu  sync.RWMutex
	fallbackChecked bool
)

// checkKeyringAvailable tests if the system keyring is reachable. The result
// is cached for the life of the process.
func checkKeyringAvailable() bool {
	fallbackModeMu.Lock()
	defer fallbackModeMu.Unlock()

	if fallbackChecked {
		return !fallbackMode
	}

	testKey := "adpilot-keyring-test"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		fallbackMode = true
		fallbackChecked = true
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	fallbackChecked = true
	return true
}

func isFallbackMode() bool {
	fallbackModeMu.RLock()
	defer fallbackModeMu.RUnlock()
	return fallbackMode
}

func fallbackPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".adpilot", fallbackFileName), nil
}

// Token returns the bearer token for the AdPilot backend: the
// ADPILOT_API_TOKEN environment variable first, then the system keyring,
// then the encrypted fallback file. Returns "" when nothing is configured.
func Token() string {
	if t := os.Getenv("ADPILOT_API_TOKEN"); t != "" {
		return t
	}

	if checkKeyringAvailable() {
		if t, err := keyring.Get(keyringService, keyringUser); err == nil && t != "" {
			return t
		}
	}

	t, err := readFallbackToken()
	if err != nil {
		return ""
	}
	return t
}

// SaveToken stores the bearer token in the system keyring, falling back to
// an encrypted file on headless systems.
func SaveToken(token string) error {
	if checkKeyringAvailable() {
		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store token in keyring: %w", err)
		}
		return nil
	}
	return writeFallbackToken(token)
}

// DeleteToken removes the stored token from both locations. Not an error if
// nothing was stored.
func DeleteToken() error {
	var keyringErr error
	if !isFallbackMode() {
		keyringErr = keyring.Delete(keyringService, keyringUser)
	}

	path, err := fallbackPath()
	if err != nil {
		return err
	}
	fileErr := os.Remove(path)
	if fileErr != nil && os.IsNotExist(fileErr) {
		fileErr = nil
	}

	if keyringErr != nil && fileErr != nil {
		return fmt.Errorf("failed to delete token from keyring and fallback file")
	}
	return nil
}

// HasToken reports whether a token is available from any source.
func HasToken() bool {
	return Token() != ""
}

// StorageMode returns a string describing where the token is kept.
func StorageMode() string {
	if os.Getenv("ADPILOT_API_TOKEN") != "" {
		return "environment"
	}
	if !fallbackChecked {
		checkKeyringAvailable()
	}
	if isFallbackMode() {
		return "encrypted file (keyring unavailable)"
	}
	return "system-keyring"
}

func writeFallbackToken(token string) error {
	path, err := fallbackPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	sealed, err := sealToken(token)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(sealed), 0600); err != nil {
		return fmt.Errorf("failed to write fallback credentials: %w", err)
	}
	return nil
}

func readFallbackToken() (string, error) {
	path, err := fallbackPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return openToken(string(data))
}
