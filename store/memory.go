package store

import (
	"context"
	"sync"
	"time"

	"oauth-gateway/models"
)

// MemoryClientStore is a mutex-guarded in-memory ClientStore. Entries live
// for the process lifetime; there is no update or delete path.
type MemoryClientStore struct {
	mu      sync.Mutex
	clients map[string]*models.Client
}

// NewMemoryClientStore creates an empty in-memory client registry.
func NewMemoryClientStore() *MemoryClientStore {
	return &MemoryClientStore{clients: make(map[string]*models.Client)}
}

// Register implements ClientStore.
func (s *MemoryClientStore) Register(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ClientID]; ok {
		return ErrDuplicateClient
	}
	s.clients[client.ClientID] = client
	return nil
}

// Find implements ClientStore.
func (s *MemoryClientStore) Find(_ context.Context, clientID string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[clientID]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// MemoryCodeStore is a mutex-guarded in-memory CodeStore. The clock is
// injectable so expiry can be simulated in tests.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]*models.AuthorizationCode
	now   func() time.Time
}

// NewMemoryCodeStore creates an empty in-memory authorization code store.
func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{
		codes: make(map[string]*models.AuthorizationCode),
		now:   time.Now,
	}
}

// SetClock replaces the store's clock. Test hook.
func (s *MemoryCodeStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Save implements CodeStore.
func (s *MemoryCodeStore) Save(_ context.Context, code *models.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[code.Code] = code
	return nil
}

// Redeem implements CodeStore. The lookup, validity checks, and delete all
// happen under one lock acquisition; a second caller observes the entry gone.
func (s *MemoryCodeStore) Redeem(_ context.Context, code, clientID string) (*models.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok {
		return nil, ErrCodeInvalid
	}
	// A found-but-stale or mismatched code is deleted too: it must never
	// become redeemable by a later, better-formed attempt.
	delete(s.codes, code)

	if record.ClientID != clientID || record.Expired(s.now()) {
		return nil, ErrCodeInvalid
	}
	return record, nil
}

// MemoryTokenStore is a mutex-guarded in-memory TokenStore with lazy expiry:
// an expired token is purged on the first Verify that observes it.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*models.Token
	now    func() time.Time
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]*models.Token),
		now:    time.Now,
	}
}

// SetClock replaces the store's clock. Test hook.
func (s *MemoryTokenStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Save implements TokenStore.
func (s *MemoryTokenStore) Save(_ context.Context, token *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.AccessToken] = token
	return nil
}

// Verify implements TokenStore.
func (s *MemoryTokenStore) Verify(_ context.Context, accessToken string) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[accessToken]
	if !ok {
		return nil, ErrTokenInvalid
	}
	if token.Expired(s.now()) {
		delete(s.tokens, accessToken)
		return nil, ErrTokenInvalid
	}
	return token, nil
}

// Revoke implements TokenStore.
func (s *MemoryTokenStore) Revoke(_ context.Context, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, accessToken)
	return nil
}

// Contains reports whether a token is currently stored, without touching
// expiry state. Test hook for observing lazy purging.
func (s *MemoryTokenStore) Contains(accessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.tokens[accessToken]
	return ok
}
