// Package sqlstore provides sqlite-backed implementations of the client and
// token stores via sqlx. Authorization codes stay in memory or redis; they
// are too short-lived to be worth a table.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"oauth-gateway/models"
	"oauth-gateway/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS oauth_clients (
	client_id                  TEXT PRIMARY KEY,
	client_secret_hash         TEXT NOT NULL DEFAULT '',
	client_name                TEXT NOT NULL DEFAULT '',
	redirect_uris              TEXT NOT NULL,
	grant_types                TEXT NOT NULL,
	response_types             TEXT NOT NULL,
	scope                      TEXT NOT NULL DEFAULT '',
	token_endpoint_auth_method TEXT NOT NULL,
	created_at                 TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS oauth_tokens (
	access_token  TEXT PRIMARY KEY,
	refresh_token TEXT NOT NULL DEFAULT '',
	client_id     TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	scope         TEXT NOT NULL DEFAULT '',
	expires_at    TIMESTAMP NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
`

// Store implements store.ClientStore and store.TokenStore on a sqlite
// database. All operations are single statements, so the database provides
// the per-operation atomicity the stores require.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (creating if needed) the sqlite database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock replaces the store's clock. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

type clientRow struct {
	ClientID                string    `db:"client_id"`
	ClientSecretHash        string    `db:"client_secret_hash"`
	ClientName              string    `db:"client_name"`
	RedirectURIs            string    `db:"redirect_uris"`
	GrantTypes              string    `db:"grant_types"`
	ResponseTypes           string    `db:"response_types"`
	Scope                   string    `db:"scope"`
	TokenEndpointAuthMethod string    `db:"token_endpoint_auth_method"`
	CreatedAt               time.Time `db:"created_at"`
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

// Register implements store.ClientStore. The primary key enforces client_id
// uniqueness.
func (s *Store) Register(ctx context.Context, client *models.Client) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oauth_clients
			(client_id, client_secret_hash, client_name, redirect_uris,
			 grant_types, response_types, scope, token_endpoint_auth_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ClientID, client.ClientSecretHash, client.ClientName,
		joinList(client.RedirectURIs), joinList(client.GrantTypes),
		joinList(client.ResponseTypes), client.Scope,
		client.TokenEndpointAuthMethod, client.CreatedAt)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return store.ErrDuplicateClient
	}
	return err
}

// Find implements store.ClientStore.
func (s *Store) Find(ctx context.Context, clientID string) (*models.Client, error) {
	var row clientRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM oauth_clients WHERE client_id = ?`, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.Client{
		ClientID:                row.ClientID,
		ClientSecretHash:        row.ClientSecretHash,
		ClientName:              row.ClientName,
		RedirectURIs:            splitList(row.RedirectURIs),
		GrantTypes:              splitList(row.GrantTypes),
		ResponseTypes:           splitList(row.ResponseTypes),
		Scope:                   row.Scope,
		TokenEndpointAuthMethod: row.TokenEndpointAuthMethod,
		CreatedAt:               row.CreatedAt,
	}, nil
}

// Save implements store.TokenStore.
func (s *Store) Save(ctx context.Context, token *models.Token) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oauth_tokens
			(access_token, refresh_token, client_id, user_id, scope, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		token.AccessToken, token.RefreshToken, token.ClientID,
		token.UserID, token.Scope, token.ExpiresAt, token.CreatedAt)
	return err
}

// Verify implements store.TokenStore, purging the row on observed expiry.
func (s *Store) Verify(ctx context.Context, accessToken string) (*models.Token, error) {
	var token models.Token
	err := s.db.GetContext(ctx, &token,
		`SELECT * FROM oauth_tokens WHERE access_token = ?`, accessToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if token.Expired(s.now()) {
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM oauth_tokens WHERE access_token = ?`, accessToken)
		return nil, store.ErrTokenInvalid
	}
	return &token, nil
}

// Revoke implements store.TokenStore.
func (s *Store) Revoke(ctx context.Context, accessToken string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM oauth_tokens WHERE access_token = ?`, accessToken)
	return err
}
