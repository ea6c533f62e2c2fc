package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
)

var randReader io.Reader = rand.Reader

func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateAPIKey mints a plaintext secret, a short display hint and the digest that is stored.
func GenerateAPIKey() (fullKey string, hint string, keyHash string, err error) {
	secret, err := generateRandomBytes(apikey.SecretBytes)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate secret: %w", err)
	}

	fullKey = apikey.KeyPrefix + hex.EncodeToString(secret)
	hint = fullKey[:apikey.KeyHintLength] + "..."
	keyHash = HashAPIKey(fullKey)

	return fullKey, hint, keyHash, nil
}

func HashAPIKey(fullKey string) string {
	hashBytes := sha256.Sum256([]byte(fullKey))
	return hex.EncodeToString(hashBytes[:])
}
