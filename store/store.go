// Package store defines the storage interfaces for the three owned
// collections of the authorization server (clients, authorization codes,
// bearer tokens) and provides the in-memory implementations. Persistent
// backends live in the sqlstore and redisstore subpackages; the protocol
// logic never depends on which one is wired in.
package store

import (
	"context"
	"errors"

	"oauth-gateway/models"
)

// Sentinel errors returned by store implementations. The OAuth layer maps
// these onto wire errors; in particular every CodeStore failure becomes a
// uniform invalid_grant so callers cannot distinguish unknown, expired and
// already-used codes.
var (
	// ErrClientNotFound indicates an unknown client_id.
	ErrClientNotFound = errors.New("client not found")

	// ErrDuplicateClient indicates a client_id collision on registration.
	ErrDuplicateClient = errors.New("client already registered")

	// ErrCodeInvalid indicates an authorization code that is absent, expired,
	// already redeemed, or bound to a different client.
	ErrCodeInvalid = errors.New("authorization code invalid")

	// ErrTokenInvalid indicates an access token that is absent or expired.
	ErrTokenInvalid = errors.New("access token invalid")
)

// ClientStore holds registered OAuth clients keyed by client_id.
type ClientStore interface {
	// Register stores a new client. Fails with ErrDuplicateClient if the
	// client_id is already taken.
	Register(ctx context.Context, client *models.Client) error

	// Find returns the client with the given id, or ErrClientNotFound.
	Find(ctx context.Context, clientID string) (*models.Client, error)
}

// CodeStore holds single-use authorization codes keyed by code value.
type CodeStore interface {
	// Save stores a freshly issued code.
	Save(ctx context.Context, code *models.AuthorizationCode) error

	// Redeem atomically looks up and deletes the code. It fails with
	// ErrCodeInvalid if the code is absent, bound to a different client, or
	// past its expiry; the expired and mismatched cases still delete the
	// entry so the code can never be replayed. Two concurrent redemptions of
	// the same code yield exactly one success.
	Redeem(ctx context.Context, code, clientID string) (*models.AuthorizationCode, error)
}

// TokenStore holds bearer tokens keyed by access token value.
type TokenStore interface {
	// Save stores a freshly issued token.
	Save(ctx context.Context, token *models.Token) error

	// Verify returns the token record iff it is present and unexpired,
	// otherwise ErrTokenInvalid. An expired entry is purged as part of the
	// failing verification.
	Verify(ctx context.Context, accessToken string) (*models.Token, error)

	// Revoke removes the token. Revoking an absent token is not an error.
	Revoke(ctx context.Context, accessToken string) error
}
