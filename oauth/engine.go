// Package oauth implements the protocol engine of the authorization server:
// client registration with RFC 7591 validation, the authorization-code state
// machine with a pluggable consent decision, and token exchange with PKCE
// and client-secret authentication. The engine is HTTP-agnostic; the
// handlers package adapts it to the wire.
package oauth

import (
	"context"
	"time"

	"oauth-gateway/models"
	"oauth-gateway/store"
)

// Default lifetimes for issued credentials.
const (
	DefaultCodeTTL  = 600 * time.Second
	DefaultTokenTTL = 3600 * time.Second
)

// DefaultSubject identifies the single implicit resource owner this server
// authorizes on behalf of.
const DefaultSubject = "default_user"

// ConsentFunc decides whether the resource owner approves an authorization
// request. The default implementation always approves; an interactive
// deployment substitutes its own decision point without touching the rest of
// the state machine.
type ConsentFunc func(ctx context.Context, client *models.Client, scope, userID string) bool

// AutoApproveConsent approves every authorization request on behalf of the
// implicit resource owner.
func AutoApproveConsent(context.Context, *models.Client, string, string) bool {
	return true
}

// Config carries the engine's dependencies and tunables. Zero values fall
// back to the package defaults.
type Config struct {
	Clients store.ClientStore
	Codes   store.CodeStore
	Tokens  store.TokenStore

	// Consent is the approval decision point; nil means auto-approve.
	Consent ConsentFunc

	// Subject is the user id bound to issued codes and tokens.
	Subject string

	CodeTTL  time.Duration
	TokenTTL time.Duration
}

// Engine is the OAuth protocol engine. All methods are safe for concurrent
// use; shared state lives behind the store interfaces.
type Engine struct {
	clients store.ClientStore
	codes   store.CodeStore
	tokens  store.TokenStore

	consent  ConsentFunc
	subject  string
	codeTTL  time.Duration
	tokenTTL time.Duration

	grants map[string]grant

	now func() time.Time
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		clients:  cfg.Clients,
		codes:    cfg.Codes,
		tokens:   cfg.Tokens,
		consent:  cfg.Consent,
		subject:  cfg.Subject,
		codeTTL:  cfg.CodeTTL,
		tokenTTL: cfg.TokenTTL,
		now:      time.Now,
	}
	if e.consent == nil {
		e.consent = AutoApproveConsent
	}
	if e.subject == "" {
		e.subject = DefaultSubject
	}
	if e.codeTTL <= 0 {
		e.codeTTL = DefaultCodeTTL
	}
	if e.tokenTTL <= 0 {
		e.tokenTTL = DefaultTokenTTL
	}

	// One handler per supported grant type; adding a grant means adding an
	// implementation here, not another branch in the token endpoint.
	e.grants = map[string]grant{}
	for _, g := range []grant{&authorizationCodeGrant{}} {
		e.grants[g.grantType()] = g
	}
	return e
}

// SetClock replaces the engine's clock. Test hook.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// TokenTTL returns the configured access token lifetime.
func (e *Engine) TokenTTL() time.Duration {
	return e.tokenTTL
}

// Revoke invalidates an access token. Unknown tokens are ignored, matching
// RFC 7009 semantics.
func (e *Engine) Revoke(ctx context.Context, accessToken string) error {
	return e.tokens.Revoke(ctx, accessToken)
}
