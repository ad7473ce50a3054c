// Package token derives the opaque add token the aread service expects.
//
// The service never sees a raw password: clients send
// hex(SHA1(username + "|" + password)) and the server compares it against
// the same digest of its own configured credentials.
package token

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// separator joins username and password before hashing.
const separator = "|"

// Credential is a username/password pair entered on the options surface.
// It is never persisted; only the derived token is.
type Credential struct {
	Username string
	Password string
}

// Derive returns hex(SHA1(username + "|" + password)).
func Derive(username, password string) string {
	sum := sha1.Sum([]byte(username + separator + password))
	return hex.EncodeToString(sum[:])
}

// FromCredential trims both fields and derives a token from them.
// It reports false when either field is empty after trimming, in which case
// callers must keep whatever token is already stored.
func FromCredential(c Credential) (string, bool) {
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	if username == "" || password == "" {
		return "", false
	}
	return Derive(username, password), true
}
