package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const stateBytes = 32

// GenerateState returns a cryptographically random, URL-safe CSRF token
// suitable for the "state" parameter of the authorization request.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrStateGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
