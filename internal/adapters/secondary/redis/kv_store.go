// Package redis provides a KeyValueStore backed by Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// maxUpdateAttempts bounds the optimistic retry loop of Update.
const maxUpdateAttempts = 10

// Connect accepts either a redis:// URL or a bare host:port address.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// KeyValueStore stores JSON documents as Redis strings under a key prefix.
type KeyValueStore struct {
	client *redis.Client
	prefix string
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// NewKeyValueStore creates a store. prefix namespaces every key.
func NewKeyValueStore(client *redis.Client, prefix string) *KeyValueStore {
	return &KeyValueStore{client: client, prefix: prefix}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return json.RawMessage(raw), nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.client.Set(ctx, s.prefix+key, []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Update watches the key, applies fn and writes inside MULTI. A concurrent
// writer aborts the transaction and the cycle is retried.
func (s *KeyValueStore) Update(ctx context.Context, key string, fn ports.UpdateFunc) error {
	redisKey := s.prefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, redisKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if errors.Is(err, redis.Nil) {
			current = nil
		}

		next, err := fn(json.RawMessage(current))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, redisKey, []byte(next), 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, redisKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update %q: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("redis update %q: %w", key, apperrors.ErrUpdateConflict)
}

func (s *KeyValueStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
