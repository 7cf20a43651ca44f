package redis

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testClient *redis.Client

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	log.Println("Setting up Redis container...")
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Printf("could not start redis container: %v", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("could not terminate redis container: %v", err)
		}
	}()

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		log.Printf("could not get redis endpoint: %v", err)
		return 1
	}

	testClient, err = Connect(ctx, endpoint)
	if err != nil {
		log.Printf("could not connect to redis: %v", err)
		return 1
	}
	defer testClient.Close()

	return m.Run()
}

func newTestStore(t *testing.T) *KeyValueStore {
	t.Helper()
	require.NoError(t, testClient.FlushDB(context.Background()).Err())
	return NewKeyValueStore(testClient, "test:")
}

func TestKeyValueStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	value, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestKeyValueStore_SetUsesPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "goal", json.RawMessage(`{"targetCompliance":90}`)))

	raw, err := testClient.Get(ctx, "test:goal").Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"targetCompliance":90}`, raw)

	value, err := store.Get(ctx, "goal")
	require.NoError(t, err)
	assert.JSONEq(t, `{"targetCompliance":90}`, string(value))
}

func TestKeyValueStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	const writers = 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, "counter", func(current json.RawMessage) (json.RawMessage, error) {
				n := 0
				if current != nil {
					if err := json.Unmarshal(current, &n); err != nil {
						return nil, err
					}
				}
				return json.RawMessage(strconv.Itoa(n + 1)), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	value, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(writers), string(value))
}

func TestKeyValueStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
