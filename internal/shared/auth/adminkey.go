// Package auth holds the shared-secret check guarding rule administration.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyKey    = errors.New("admin key is empty")
	ErrKeyMismatch = errors.New("admin key does not match")
)

// minKeyLength keeps generated and hand-picked keys out of brute-force range.
const minKeyLength = 16

// HashAdminKey returns the bcrypt hash to put in ADMIN_KEY_HASH.
func HashAdminKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	if len(key) < minKeyLength {
		return "", errors.New("admin key must be at least 16 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAdminKey checks key against hash. An empty hash never matches.
func VerifyAdminKey(hash, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if hash == "" {
		return ErrKeyMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrKeyMismatch
	}
	return nil
}

// GenerateAdminKey returns a random URL-safe key.
func GenerateAdminKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
