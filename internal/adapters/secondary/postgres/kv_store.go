package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// KeyValueStore keeps JSON documents in the kv_store table.
type KeyValueStore struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// NewKeyValueStore creates a new key-value store.
func NewKeyValueStore(pool *pgxpool.Pool, tm *TransactionManager) *KeyValueStore {
	return &KeyValueStore{pool: pool, tm: tm}
}

// Get returns nil, nil for a missing key or a placeholder row.
func (s *KeyValueStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := GetDBTX(ctx, s.pool).QueryRow(ctx,
		`SELECT value FROM kv_store WHERE key = $1`, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return json.RawMessage(raw), nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := GetDBTX(ctx, s.pool).Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, []byte(value),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of fn.
// A placeholder row is inserted first so that a missing key can be locked too;
// it is rolled back with everything else when fn fails.
func (s *KeyValueStore) Update(ctx context.Context, key string, fn ports.UpdateFunc) error {
	return s.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO kv_store (key, value) VALUES ($1, NULL) ON CONFLICT (key) DO NOTHING`, key,
		); err != nil {
			return fmt.Errorf("reserve %q: %w", key, err)
		}

		var current []byte
		if err := tx.QueryRow(ctx,
			`SELECT value FROM kv_store WHERE key = $1 FOR UPDATE`, key,
		).Scan(&current); err != nil {
			return fmt.Errorf("lock %q: %w", key, err)
		}

		next, err := fn(json.RawMessage(current))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE kv_store SET value = $2, updated_at = now() WHERE key = $1`, key, []byte(next),
		); err != nil {
			return fmt.Errorf("write %q: %w", key, err)
		}
		return nil
	})
}

func (s *KeyValueStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
