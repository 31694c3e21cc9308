package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewHasher.
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// Hasher turns plaintext passwords into stored digests and checks them.
type Hasher interface {
	Digest(plaintext string) (string, error)
	Matches(digest, plaintext string) bool
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HasherSHA256:
		return SHA256Hasher{}, nil
	case HasherBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// Hash is the legacy password digest: unsalted single-pass SHA-256 in
// lowercase hex. Existing accounts were stored with it, so it must not change.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// SHA256Hasher stores Hash digests.
type SHA256Hasher struct{}

func (SHA256Hasher) Digest(plaintext string) (string, error) {
	return Hash(plaintext), nil
}

func (SHA256Hasher) Matches(digest, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(Hash(plaintext))) == 1
}

// BcryptHasher stores salted bcrypt digests. Accounts created under
// SHA256Hasher cannot log in once this is selected.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Digest(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h BcryptHasher) Matches(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
