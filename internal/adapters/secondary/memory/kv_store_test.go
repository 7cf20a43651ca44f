package memory

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueStore_GetMissing(t *testing.T) {
	store := NewKeyValueStore()

	value, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestKeyValueStore_SetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()

	doc := json.RawMessage(`{"a":1}`)
	require.NoError(t, store.Set(ctx, "k", doc))
	doc[2] = 'b'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(value))
	assert.Equal(t, 1, store.Len())
}

func TestKeyValueStore_UpdateError(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()
	boom := errors.New("boom")

	err := store.Update(ctx, "k", func(json.RawMessage) (json.RawMessage, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestKeyValueStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "n", func(current json.RawMessage) (json.RawMessage, error) {
				n := 0
				if current != nil {
					_ = json.Unmarshal(current, &n)
				}
				return json.RawMessage(strconv.Itoa(n + 1)), nil
			})
		}()
	}
	wg.Wait()

	value, err := store.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "100", string(value))
}

func TestKeyValueStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewKeyValueStore()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}
