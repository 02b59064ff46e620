// Package redisstore provides redis-backed implementations of the code and
// token stores. Key TTLs mirror the record lifetimes, so redis evicts
// expired entries on its own; the lifetime checks are still enforced on read
// in case of clock drift between this process and the redis server.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"oauth-gateway/models"
	"oauth-gateway/store"
)

const (
	codeKeyPrefix  = "oauth:code:"
	tokenKeyPrefix = "oauth:token:"
)

// Connect opens a redis client for the given address and verifies the
// connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func setJSON(ctx context.Context, client *redis.Client, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// CodeStore is a redis-backed store.CodeStore.
type CodeStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewCodeStore creates a code store on the given redis client.
func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client, now: time.Now}
}

// SetClock replaces the store's clock. Test hook.
func (s *CodeStore) SetClock(now func() time.Time) {
	s.now = now
}

// Save implements store.CodeStore.
func (s *CodeStore) Save(ctx context.Context, code *models.AuthorizationCode) error {
	return setJSON(ctx, s.client, codeKeyPrefix+code.Code, code, code.ExpiresAt.Sub(s.now()))
}

// Redeem implements store.CodeStore. GETDEL removes the key in the same
// redis command that reads it, so concurrent redemptions see at most one
// non-nil reply.
func (s *CodeStore) Redeem(ctx context.Context, code, clientID string) (*models.AuthorizationCode, error) {
	data, err := s.client.GetDel(ctx, codeKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrCodeInvalid
	}
	if err != nil {
		return nil, err
	}

	var record models.AuthorizationCode
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, store.ErrCodeInvalid
	}
	if record.ClientID != clientID || record.Expired(s.now()) {
		return nil, store.ErrCodeInvalid
	}
	return &record, nil
}

// TokenStore is a redis-backed store.TokenStore.
type TokenStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewTokenStore creates a token store on the given redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client, now: time.Now}
}

// SetClock replaces the store's clock. Test hook.
func (s *TokenStore) SetClock(now func() time.Time) {
	s.now = now
}

// Save implements store.TokenStore.
func (s *TokenStore) Save(ctx context.Context, token *models.Token) error {
	return setJSON(ctx, s.client, tokenKeyPrefix+token.AccessToken, token, token.ExpiresAt.Sub(s.now()))
}

// Verify implements store.TokenStore.
func (s *TokenStore) Verify(ctx context.Context, accessToken string) (*models.Token, error) {
	data, err := s.client.Get(ctx, tokenKeyPrefix+accessToken).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}

	var token models.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, store.ErrTokenInvalid
	}
	if token.Expired(s.now()) {
		_ = s.client.Del(ctx, tokenKeyPrefix+accessToken).Err()
		return nil, store.ErrTokenInvalid
	}
	return &token, nil
}

// Revoke implements store.TokenStore.
func (s *TokenStore) Revoke(ctx context.Context, accessToken string) error {
	return s.client.Del(ctx, tokenKeyPrefix+accessToken).Err()
}
