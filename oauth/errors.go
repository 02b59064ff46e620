package oauth

import (
	"fmt"
	"net/http"
)

// OAuth2 error codes used on the wire (RFC 6749 Section 5.2, RFC 7591
// Section 3.2.2).
const (
	ErrorInvalidRequest          = "invalid_request"
	ErrorInvalidClient           = "invalid_client"
	ErrorInvalidGrant            = "invalid_grant"
	ErrorUnauthorizedClient      = "unauthorized_client"
	ErrorAccessDenied            = "access_denied"
	ErrorUnsupportedGrantType    = "unsupported_grant_type"
	ErrorUnsupportedResponseType = "unsupported_response_type"
	ErrorServerError             = "server_error"
	ErrorInvalidRedirectURI      = "invalid_redirect_uri"
	ErrorInvalidClientMetadata   = "invalid_client_metadata"
)

// Error is an OAuth2 protocol error. It carries the HTTP status the endpoint
// should respond with and renders as the standard {error, error_description}
// body.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Status      int    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewError creates an OAuth error with an explicit HTTP status.
func NewError(code, description string, status int) *Error {
	return &Error{Code: code, Description: description, Status: status}
}

func invalidRequest(description string) *Error {
	return NewError(ErrorInvalidRequest, description, http.StatusBadRequest)
}

func invalidClient(description string) *Error {
	return NewError(ErrorInvalidClient, description, http.StatusUnauthorized)
}

// invalidGrant is deliberately uniform: unknown, expired, replayed and
// mismatched codes must be indistinguishable to the caller.
func invalidGrant() *Error {
	return NewError(ErrorInvalidGrant, "authorization grant is invalid, expired, or revoked", http.StatusBadRequest)
}

func serverError(description string) *Error {
	return NewError(ErrorServerError, description, http.StatusInternalServerError)
}

// RedirectError is an authorization-endpoint failure that occurred after the
// redirect URI was validated. It is delivered to the client as an OAuth
// error redirect instead of a direct response.
type RedirectError struct {
	Err *Error

	// RedirectURL is the fully built redirect target, already carrying the
	// error, error_description and state query parameters.
	RedirectURL string
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying OAuth error.
func (e *RedirectError) Unwrap() error {
	return e.Err
}
