package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oauth-gateway/models"
	"oauth-gateway/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "oauth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ClientRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	client := &models.Client{
		ClientID:                "client-1",
		ClientSecretHash:        "$2a$10$hash",
		ClientName:              "Test Client",
		RedirectURIs:            []string{"https://app.example/cb", "https://app.example/cb2"},
		GrantTypes:              []string{"authorization_code"},
		ResponseTypes:           []string{"code"},
		Scope:                   "read write",
		TokenEndpointAuthMethod: "client_secret_post",
		CreatedAt:               time.Now().UTC(),
	}
	require.NoError(t, s.Register(ctx, client))

	found, err := s.Find(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, client.RedirectURIs, found.RedirectURIs)
	assert.Equal(t, client.GrantTypes, found.GrantTypes)
	assert.Equal(t, client.ClientSecretHash, found.ClientSecretHash)
	assert.True(t, found.CheckRedirectURI("https://app.example/cb2"))

	_, err = s.Find(ctx, "unknown")
	assert.ErrorIs(t, err, store.ErrClientNotFound)
}

func TestStore_DuplicateClient(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	client := &models.Client{ClientID: "dup", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Register(ctx, client))
	assert.ErrorIs(t, s.Register(ctx, client), store.ErrDuplicateClient)
}

func TestStore_TokenLifecycle(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	created := time.Now().UTC()
	token := &models.Token{
		AccessToken:  "at_sql",
		RefreshToken: "rt_sql",
		ClientID:     "client-1",
		UserID:       "user-1",
		Scope:        "read",
		ExpiresAt:    created.Add(time.Hour),
		CreatedAt:    created,
	}
	require.NoError(t, s.Save(ctx, token))

	got, err := s.Verify(ctx, "at_sql")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)

	s.SetClock(func() time.Time { return created.Add(2 * time.Hour) })
	_, err = s.Verify(ctx, "at_sql")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)

	// The expired row was purged, not just rejected.
	s.SetClock(time.Now)
	_, err = s.Verify(ctx, "at_sql")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
}

func TestStore_Revoke(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Token{
		AccessToken: "at_revoked",
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, s.Revoke(ctx, "at_revoked"))

	_, err := s.Verify(ctx, "at_revoked")
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
	assert.NoError(t, s.Revoke(ctx, "never-issued"))
}
