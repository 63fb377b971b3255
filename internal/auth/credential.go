package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredential is the bootstrap admin credential used when the airline
// API cannot be reached. Either a plaintext key or a bcrypt hash is set.
type AdminCredential struct {
	key  string
	hash []byte
}

// NewAdminCredential builds the credential from configuration. A hash takes
// precedence over a plaintext key.
func NewAdminCredential(key, hash string) *AdminCredential {
	c := &AdminCredential{key: key}
	if hash != "" {
		c.hash = []byte(hash)
	}
	return c
}

// Configured reports whether any admin credential is set
func (c *AdminCredential) Configured() bool {
	return c != nil && (c.key != "" || len(c.hash) > 0)
}

// Matches compares candidate against the admin credential
func (c *AdminCredential) Matches(candidate string) bool {
	if !c.Configured() || candidate == "" {
		return false
	}
	if len(c.hash) > 0 {
		return bcrypt.CompareHashAndPassword(c.hash, []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.key), []byte(candidate)) == 1
}

// Key returns the plaintext admin key for outbound upstream calls. It is
// empty when only a hash is configured.
func (c *AdminCredential) Key() string {
	if c == nil {
		return ""
	}
	return c.key
}

// HashCredential returns the hex SHA-256 of a credential, the form staff
// records store it in
func HashCredential(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}
