package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength  = 16 // 128-bit salt
	keyLength   = 32 // AES-256
	nonceLength = 12 // GCM nonce

	pbkdf2Iterations = 310000
)

// machineSecret is the passphrase for the fallback credentials file. It is
// derived from host identity, so the file is useless when copied to another
// machine. This is best-effort at-rest protection for headless installs,
// not a substitute for the system keyring.
func machineSecret() string {
	host, _ := os.Hostname()
	return host + "|" + strconv.Itoa(os.Getuid()) + "|adpilot-cli"
}

func deriveKey(secret string, salt []byte) []byte {
	return pbkdf2.Key([]byte(secret), salt, pbkdf2Iterations, keyLength, sha256.New)
}

func randomBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// sealToken encrypts a token with AES-256-GCM under a PBKDF2-derived key and
// returns base64(salt | nonce | ciphertext).
func sealToken(token string) (string, error) {
	salt, err := randomBytes(saltLength)
	if err != nil {
		return "", err
	}
	nonce, err := randomBytes(nonceLength)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(machineSecret(), salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(token), nil)

	blob := make([]byte, 0, saltLength+nonceLength+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// openToken reverses sealToken.
func openToken(encoded string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials: %w", err)
	}
	if len(blob) < saltLength+nonceLength {
		return "", fmt.Errorf("credentials file too short")
	}

	salt := blob[:saltLength]
	nonce := blob[saltLength : saltLength+nonceLength]
	ciphertext := blob[saltLength+nonceLength:]

	block, err := aes.NewCipher(deriveKey(machineSecret(), salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}
