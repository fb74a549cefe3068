package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Storage keys. These mirror the local-storage keys of the original
// client so exported state stays recognizable.
const (
	KeyAdminToken     = "adminToken"
	KeyAdminTokenTime = "adminTokenTime"
	KeyGatewaySession = "gatewaySession"
	KeyRecentClicks   = "recentEpisodeClicks"
	KeyWatchProgress  = "watchProgress"
)

// Store is a key/value view over the client_state table. Values are plain
// strings; callers JSON-encode structured data themselves.
type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Get returns "" with no error when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT value FROM client_state WHERE key = ?
	`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM client_state WHERE key = ?
	`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
