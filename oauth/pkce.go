package oauth

import (
	"crypto/subtle"

	"golang.org/x/oauth2"
)

// CodeChallengeMethodS256 is the only PKCE challenge method this server
// supports (RFC 7636 Section 4.2).
const CodeChallengeMethodS256 = "S256"

// verifyPKCE checks code_challenge == BASE64URL(SHA256(code_verifier)) with
// a constant-time comparison.
func verifyPKCE(verifier, challenge string) bool {
	computed := oauth2.S256ChallengeFromVerifier(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
