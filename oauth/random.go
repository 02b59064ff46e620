package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Credential sizes in bytes. Client IDs carry 256 bits of entropy, secrets
// 192, codes and tokens 256.
const (
	clientIDBytes     = 32
	clientSecretBytes = 24
	codeBytes         = 32
	tokenBytes        = 32
)

func randomURLSafe(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// newClientID generates a URL-safe random client identifier.
func newClientID() (string, error) {
	return randomURLSafe(clientIDBytes)
}

// newClientSecret generates a random client secret.
func newClientSecret() (string, error) {
	return randomHex(clientSecretBytes)
}

// newAuthorizationCode generates an unguessable authorization code.
func newAuthorizationCode() (string, error) {
	return randomURLSafe(codeBytes)
}

// newAccessToken generates an opaque access token.
func newAccessToken() (string, error) {
	s, err := randomHex(tokenBytes)
	if err != nil {
		return "", err
	}
	return "at_" + s, nil
}

// newRefreshToken generates an opaque refresh token.
func newRefreshToken() (string, error) {
	s, err := randomHex(tokenBytes)
	if err != nil {
		return "", err
	}
	return "rt_" + s, nil
}
