package models

import "time"

// AuthorizationCode is a single-use grant issued by the authorization
// endpoint and redeemed exactly once at the token endpoint. The redirect URI
// and optional PKCE challenge are bound at issuance and re-checked at
// redemption.
type AuthorizationCode struct {
	Code                string    `json:"code" db:"code"`
	ClientID            string    `json:"client_id" db:"client_id"`
	UserID              string    `json:"user_id" db:"user_id"`
	RedirectURI         string    `json:"redirect_uri" db:"redirect_uri"`
	Scope               string    `json:"scope" db:"scope"`
	CodeChallenge       string    `json:"code_challenge,omitempty" db:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method,omitempty" db:"code_challenge_method"`
	IssuedAt            time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt           time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the code is past its lifetime at the given instant.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
