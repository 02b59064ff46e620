package models

import (
	"slices"
	"time"
)

// Grant types and response types supported by this server.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"

	ResponseTypeCode = "code"
)

// Token endpoint authentication methods supported by this server.
const (
	TokenEndpointAuthBasic = "client_secret_basic"
	TokenEndpointAuthPost  = "client_secret_post"
	TokenEndpointAuthNone  = "none"
)

// AllowedGrantTypes is the closed set of grant types a client may register.
var AllowedGrantTypes = map[string]bool{
	GrantTypeAuthorizationCode: true,
	GrantTypeRefreshToken:      true,
}

// AllowedResponseTypes is the closed set of response types a client may register.
var AllowedResponseTypes = map[string]bool{
	ResponseTypeCode: true,
}

// AllowedTokenEndpointAuthMethods is the closed set of token endpoint auth methods.
var AllowedTokenEndpointAuthMethods = map[string]bool{
	TokenEndpointAuthBasic: true,
	TokenEndpointAuthPost:  true,
	TokenEndpointAuthNone:  true,
}

// Client is a registered OAuth client. The plaintext secret is returned only
// once, in the registration response; the stored record keeps a bcrypt hash.
// Records are immutable after registration.
type Client struct {
	ClientID                string    `json:"client_id" db:"client_id"`
	ClientSecretHash        string    `json:"-" db:"client_secret_hash"`
	ClientName              string    `json:"client_name" db:"client_name"`
	RedirectURIs            []string  `json:"redirect_uris"`
	GrantTypes              []string  `json:"grant_types"`
	ResponseTypes           []string  `json:"response_types"`
	Scope                   string    `json:"scope" db:"scope"`
	TokenEndpointAuthMethod string    `json:"token_endpoint_auth_method" db:"token_endpoint_auth_method"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
}

// HasSecret reports whether the client is confidential.
func (c *Client) HasSecret() bool {
	return c.ClientSecretHash != ""
}

// CheckRedirectURI validates a redirect URI by exact match against the
// registered set. Never fall back to substring or prefix matching here;
// anything less than equality opens a redirect to an attacker-controlled URI.
func (c *Client) CheckRedirectURI(uri string) bool {
	return uri != "" && slices.Contains(c.RedirectURIs, uri)
}

// AllowsGrantType reports whether the client registered the given grant type.
func (c *Client) AllowsGrantType(grantType string) bool {
	return slices.Contains(c.GrantTypes, grantType)
}

// AllowsResponseType reports whether the client registered the given response type.
func (c *Client) AllowsResponseType(responseType string) bool {
	return slices.Contains(c.ResponseTypes, responseType)
}
