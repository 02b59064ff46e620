package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"oauth-gateway/logger"
	"oauth-gateway/models"
)

// Registration limits per RFC 7591 practice, to bound open-registration
// request sizes.
const (
	maxRedirectURIs     = 10
	maxClientNameLength = 256
)

// defaultClientName is applied when a registration omits client_name.
const defaultClientName = "MCP Client"

// Register performs open Dynamic Client Registration: validate the metadata,
// apply defaults, mint credentials, and store the client. The plaintext
// secret appears only in the returned response; the stored record keeps a
// bcrypt hash.
//
// Registration is deliberately unauthenticated. Anyone who can reach the
// endpoint can obtain credentials; the trust boundary is the bearer check at
// the gateway, not possession of a client_id.
func (e *Engine) Register(ctx context.Context, req *models.RegistrationRequest) (*models.RegistrationResponse, error) {
	if err := validateRedirectURIs(req.RedirectURIs); err != nil {
		return nil, err
	}

	clientName := req.ClientName
	if clientName == "" {
		clientName = defaultClientName
	}
	if len(clientName) > maxClientNameLength {
		return nil, NewError(ErrorInvalidClientMetadata,
			fmt.Sprintf("client_name too long (maximum %d characters)", maxClientNameLength),
			http.StatusBadRequest)
	}

	grantTypes, verr := validateGrantTypes(req.GrantTypes)
	if verr != nil {
		return nil, verr
	}
	responseTypes, verr := validateResponseTypes(req.ResponseTypes)
	if verr != nil {
		return nil, verr
	}
	authMethod, verr := validateTokenEndpointAuthMethod(req.TokenEndpointAuthMethod)
	if verr != nil {
		return nil, verr
	}

	clientID, err := newClientID()
	if err != nil {
		return nil, serverError("failed to generate client_id")
	}

	client := &models.Client{
		ClientID:                clientID,
		ClientName:              clientName,
		RedirectURIs:            req.RedirectURIs,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		Scope:                   req.Scope,
		TokenEndpointAuthMethod: authMethod,
		CreatedAt:               e.now(),
	}

	var clientSecret string
	if authMethod != models.TokenEndpointAuthNone {
		clientSecret, err = newClientSecret()
		if err != nil {
			return nil, serverError("failed to generate client_secret")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
		if err != nil {
			return nil, serverError("failed to hash client_secret")
		}
		client.ClientSecretHash = string(hash)
	}

	if err := e.clients.Register(ctx, client); err != nil {
		logger.Error("failed to store client registration", zap.Error(err))
		return nil, serverError("failed to store client registration")
	}

	logger.Info("client registered",
		zap.String("client_id", clientID),
		zap.String("client_name", clientName),
		zap.Int("redirect_uris", len(req.RedirectURIs)))

	return &models.RegistrationResponse{
		ClientID:                clientID,
		ClientSecret:            clientSecret,
		ClientIDIssuedAt:        client.CreatedAt.Unix(),
		ClientSecretExpiresAt:   0,
		ClientName:              clientName,
		RedirectURIs:            req.RedirectURIs,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		Scope:                   req.Scope,
		TokenEndpointAuthMethod: authMethod,
	}, nil
}

// validateRedirectURIs requires at least one absolute, fragment-free URI.
func validateRedirectURIs(uris []string) *Error {
	if len(uris) == 0 {
		return NewError(ErrorInvalidRedirectURI, "redirect_uris is required", http.StatusBadRequest)
	}
	if len(uris) > maxRedirectURIs {
		return NewError(ErrorInvalidRedirectURI,
			fmt.Sprintf("too many redirect_uris (maximum %d)", maxRedirectURIs),
			http.StatusBadRequest)
	}
	for _, uri := range uris {
		u, err := url.ParseRequestURI(uri)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewError(ErrorInvalidRedirectURI,
				fmt.Sprintf("redirect_uri %q must be an absolute URL with scheme and host", uri),
				http.StatusBadRequest)
		}
		if u.Fragment != "" {
			return NewError(ErrorInvalidRedirectURI,
				fmt.Sprintf("redirect_uri %q must not contain a fragment", uri),
				http.StatusBadRequest)
		}
	}
	return nil
}

func validateGrantTypes(grantTypes []string) ([]string, *Error) {
	if len(grantTypes) == 0 {
		grantTypes = []string{models.GrantTypeAuthorizationCode}
	}
	hasAuthorizationCode := false
	for _, gt := range grantTypes {
		if !models.AllowedGrantTypes[gt] {
			return nil, NewError(ErrorInvalidClientMetadata,
				"unsupported grant_type: "+gt, http.StatusBadRequest)
		}
		if gt == models.GrantTypeAuthorizationCode {
			hasAuthorizationCode = true
		}
	}
	if !hasAuthorizationCode {
		return nil, NewError(ErrorInvalidClientMetadata,
			"grant_types must include 'authorization_code'", http.StatusBadRequest)
	}
	return grantTypes, nil
}

func validateResponseTypes(responseTypes []string) ([]string, *Error) {
	if len(responseTypes) == 0 {
		responseTypes = []string{models.ResponseTypeCode}
	}
	hasCode := false
	for _, rt := range responseTypes {
		if !models.AllowedResponseTypes[rt] {
			return nil, NewError(ErrorInvalidClientMetadata,
				"unsupported response_type: "+rt, http.StatusBadRequest)
		}
		if rt == models.ResponseTypeCode {
			hasCode = true
		}
	}
	if !hasCode {
		return nil, NewError(ErrorInvalidClientMetadata,
			"response_types must include 'code'", http.StatusBadRequest)
	}
	return responseTypes, nil
}

func validateTokenEndpointAuthMethod(method string) (string, *Error) {
	if method == "" {
		method = models.TokenEndpointAuthBasic
	}
	if !models.AllowedTokenEndpointAuthMethods[method] {
		return "", NewError(ErrorInvalidClientMetadata,
			"unsupported token_endpoint_auth_method: "+method, http.StatusBadRequest)
	}
	return method, nil
}
