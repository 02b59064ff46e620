package redisstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oauth-gateway/models"
	"oauth-gateway/store"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func newTestCode(code string, issuedAt time.Time) *models.AuthorizationCode {
	return &models.AuthorizationCode{
		Code:        code,
		ClientID:    "client-1",
		UserID:      "user-1",
		RedirectURI: "https://app.example/cb",
		Scope:       "read",
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(10 * time.Minute),
	}
}

func TestCodeStore_RedeemOnce(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)
	s := NewCodeStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newTestCode("code-1", time.Now())))

	record, err := s.Redeem(ctx, "code-1", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example/cb", record.RedirectURI)

	_, err = s.Redeem(ctx, "code-1", "client-1")
	assert.ErrorIs(t, err, store.ErrCodeInvalid)
}

func TestCodeStore_ClientMismatchConsumesCode(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)
	s := NewCodeStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newTestCode("code-1", time.Now())))

	_, err := s.Redeem(ctx, "code-1", "other-client")
	assert.ErrorIs(t, err, store.ErrCodeInvalid)

	_, err = s.Redeem(ctx, "code-1", "client-1")
	assert.ErrorIs(t, err, store.ErrCodeInvalid)
}

func TestCodeStore_ExpiryViaTTL(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	s := NewCodeStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newTestCode("code-1", time.Now())))

	mr.FastForward(11 * time.Minute)

	_, err := s.Redeem(ctx, "code-1", "client-1")
	assert.ErrorIs(t, err, store.ErrCodeInvalid)
}

func TestCodeStore_ConcurrentRedeemExactlyOneSuccess(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)
	s := NewCodeStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newTestCode("code-1", time.Now())))

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Redeem(ctx, "code-1", "client-1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}

func TestTokenStore_Lifecycle(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	s := NewTokenStore(client)
	ctx := context.Background()

	created := time.Now()
	require.NoError(t, s.Save(ctx, &models.Token{
		AccessToken: "at_redis",
		ClientID:    "client-1",
		UserID:      "user-1",
		Scope:       "read",
		ExpiresAt:   created.Add(time.Hour),
		CreatedAt:   created,
	}))

	got, err := s.Verify(ctx, "at_redis")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)

	mr.FastForward(2 * time.Hour)
	_, err = s.Verify(ctx, "at_redis")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
}

func TestTokenStore_Revoke(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)
	s := NewTokenStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Token{
		AccessToken: "at_revoked",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))
	require.NoError(t, s.Revoke(ctx, "at_revoked"))

	_, err := s.Verify(ctx, "at_revoked")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
	assert.NoError(t, s.Revoke(ctx, "never-issued"))
}
