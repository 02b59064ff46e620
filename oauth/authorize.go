package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/models"
	"oauth-gateway/store"
)

// AuthorizeRequest carries the query parameters of GET /oauth/authorize.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeResult is a successful authorization: the redirect target already
// carrying the one-time code and the caller's state.
type AuthorizeResult struct {
	RedirectURL string
}

// Authorize runs the authorization state machine. Failures before the
// redirect URI is validated come back as a plain *Error and must be shown
// directly; failures after validation come back as a *RedirectError and are
// delivered via the (now trusted) redirect URI. A request is never redirected
// to a URI that did not pass exact matching against the client's registered
// set.
func (e *Engine) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error) {
	if req.ClientID == "" {
		return nil, invalidRequest("client_id is required")
	}

	client, err := e.clients.Find(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			logger.Info("authorize rejected: unknown client", zap.String("client_id", req.ClientID))
			return nil, NewError(ErrorInvalidClient, "unknown client", http.StatusBadRequest)
		}
		return nil, serverError("client lookup failed")
	}

	if !client.CheckRedirectURI(req.RedirectURI) {
		logger.Info("authorize rejected: redirect_uri mismatch",
			zap.String("client_id", req.ClientID),
			zap.String("redirect_uri", req.RedirectURI))
		return nil, invalidRequest("redirect_uri is missing or not registered for this client")
	}

	// From here on the redirect URI is trusted and errors travel through it.
	if req.ResponseType != models.ResponseTypeCode || !client.AllowsResponseType(req.ResponseType) {
		return nil, e.errorRedirect(req, NewError(ErrorUnsupportedResponseType, "only response_type=code is supported", http.StatusBadRequest))
	}
	if !client.AllowsGrantType(models.GrantTypeAuthorizationCode) {
		return nil, e.errorRedirect(req, NewError(ErrorUnauthorizedClient, "client is not authorized for the authorization_code grant", http.StatusBadRequest))
	}

	codeChallengeMethod := req.CodeChallengeMethod
	if req.CodeChallenge != "" {
		if codeChallengeMethod == "" {
			codeChallengeMethod = CodeChallengeMethodS256
		}
		if codeChallengeMethod != CodeChallengeMethodS256 {
			return nil, e.errorRedirect(req, invalidRequest("only the S256 code_challenge_method is supported"))
		}
	}

	if !e.consent(ctx, client, req.Scope, e.subject) {
		return nil, e.errorRedirect(req, NewError(ErrorAccessDenied, "the resource owner denied the request", http.StatusBadRequest))
	}

	code, err := newAuthorizationCode()
	if err != nil {
		return nil, e.errorRedirect(req, serverError("failed to generate authorization code"))
	}

	now := e.now()
	record := &models.AuthorizationCode{
		Code:        code,
		ClientID:    client.ClientID,
		UserID:      e.subject,
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
		IssuedAt:    now,
		ExpiresAt:   now.Add(e.codeTTL),
	}
	if req.CodeChallenge != "" {
		record.CodeChallenge = req.CodeChallenge
		record.CodeChallengeMethod = codeChallengeMethod
	}
	if err := e.codes.Save(ctx, record); err != nil {
		logger.Error("failed to store authorization code", zap.Error(err))
		return nil, e.errorRedirect(req, serverError("failed to store authorization code"))
	}

	logger.Info("authorization code issued",
		zap.String("client_id", client.ClientID),
		zap.String("scope", req.Scope))

	redirectURL, err := buildRedirect(req.RedirectURI, url.Values{
		"code":  {code},
		"state": {req.State},
	}, req.State != "")
	if err != nil {
		return nil, e.errorRedirect(req, serverError("invalid redirect_uri"))
	}
	return &AuthorizeResult{RedirectURL: redirectURL}, nil
}

// errorRedirect builds a RedirectError targeting the already-validated
// redirect URI, preserving the caller's state.
func (e *Engine) errorRedirect(req *AuthorizeRequest, oauthErr *Error) error {
	params := url.Values{
		"error":             {oauthErr.Code},
		"error_description": {oauthErr.Description},
		"state":             {req.State},
	}
	redirectURL, err := buildRedirect(req.RedirectURI, params, req.State != "")
	if err != nil {
		return oauthErr
	}
	return &RedirectError{Err: oauthErr, RedirectURL: redirectURL}
}

// buildRedirect appends params to base, keeping any query the registered
// URI already carries. The state parameter is forwarded only when the client
// sent one.
func buildRedirect(base string, params url.Values, withState bool) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, values := range params {
		if key == "state" && !withState {
			continue
		}
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
