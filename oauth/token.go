package oauth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"oauth-gateway/logger"
	"oauth-gateway/models"
	"oauth-gateway/store"
)

// grant handles the token exchange for one OAuth grant type. Supporting a
// new grant means implementing this interface and registering it in
// NewEngine.
type grant interface {
	grantType() string
	exchange(ctx context.Context, e *Engine, req *models.TokenRequest) (*models.TokenResponse, error)
}

// Exchange processes a token endpoint request by dispatching to the handler
// registered for its grant type.
func (e *Engine) Exchange(ctx context.Context, req *models.TokenRequest) (*models.TokenResponse, error) {
	g, ok := e.grants[req.GrantType]
	if !ok {
		return nil, NewError(ErrorUnsupportedGrantType,
			"grant_type must be one of: authorization_code", http.StatusBadRequest)
	}
	return g.exchange(ctx, e, req)
}

// authorizationCodeGrant implements the authorization_code exchange:
// authenticate the client, redeem the code exactly once, re-check the
// redirect binding, verify PKCE, and issue a bearer token.
type authorizationCodeGrant struct{}

func (*authorizationCodeGrant) grantType() string {
	return models.GrantTypeAuthorizationCode
}

func (*authorizationCodeGrant) exchange(ctx context.Context, e *Engine, req *models.TokenRequest) (*models.TokenResponse, error) {
	if req.Code == "" || req.ClientID == "" || req.RedirectURI == "" {
		return nil, invalidRequest("code, client_id and redirect_uri are required")
	}

	client, err := e.clients.Find(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			logger.Info("token exchange rejected: unknown client", zap.String("client_id", req.ClientID))
			return nil, invalidClient("client authentication failed")
		}
		return nil, serverError("client lookup failed")
	}

	// Authenticate the client. A confidential client proves possession of
	// its secret; when it sends a code_verifier instead, the secret check is
	// deferred to PKCE verification against the challenge bound at issuance.
	secretVerified := false
	switch {
	case client.HasSecret() && req.ClientSecret != "":
		if bcrypt.CompareHashAndPassword([]byte(client.ClientSecretHash), []byte(req.ClientSecret)) != nil {
			logger.Info("token exchange rejected: bad client secret", zap.String("client_id", req.ClientID))
			return nil, invalidClient("client authentication failed")
		}
		secretVerified = true
	case client.HasSecret() && req.CodeVerifier != "":
		// Deferred: the code must carry a PKCE challenge, checked below.
	case client.HasSecret():
		return nil, invalidClient("client authentication failed")
	}

	code, err := e.codes.Redeem(ctx, req.Code, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrCodeInvalid) {
			logger.Info("token exchange rejected: code redemption failed", zap.String("client_id", req.ClientID))
			return nil, invalidGrant()
		}
		return nil, serverError("code redemption failed")
	}

	if code.RedirectURI != req.RedirectURI {
		logger.Info("token exchange rejected: redirect_uri does not match issuance",
			zap.String("client_id", req.ClientID))
		return nil, invalidGrant()
	}

	if code.CodeChallenge != "" {
		if req.CodeVerifier == "" || !verifyPKCE(req.CodeVerifier, code.CodeChallenge) {
			logger.Info("token exchange rejected: PKCE verification failed", zap.String("client_id", req.ClientID))
			return nil, invalidGrant()
		}
	} else if !secretVerified && client.HasSecret() {
		// The client skipped its secret expecting PKCE, but the code was
		// issued without a challenge; nothing authenticated it.
		return nil, invalidClient("client authentication failed")
	}

	return e.issueToken(ctx, code)
}

// issueToken mints and stores a bearer token for a redeemed code.
func (e *Engine) issueToken(ctx context.Context, code *models.AuthorizationCode) (*models.TokenResponse, error) {
	accessToken, err := newAccessToken()
	if err != nil {
		return nil, serverError("failed to generate access token")
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, serverError("failed to generate refresh token")
	}

	now := e.now()
	token := &models.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ClientID:     code.ClientID,
		UserID:       code.UserID,
		Scope:        code.Scope,
		ExpiresAt:    now.Add(e.tokenTTL),
		CreatedAt:    now,
	}
	if err := e.tokens.Save(ctx, token); err != nil {
		logger.Error("failed to store access token", zap.Error(err))
		return nil, serverError("failed to store access token")
	}

	logger.Info("access token issued",
		zap.String("client_id", code.ClientID),
		zap.String("scope", code.Scope))

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(e.tokenTTL.Seconds()),
		RefreshToken: refreshToken,
		Scope:        code.Scope,
	}, nil
}
