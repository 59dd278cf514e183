package cache

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient is a mock for the Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringCmd(ctx)
	if err := args.Error(1); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	cmd := redis.NewStatusCmd(ctx)
	if err := args.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemory(4)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "scrape:a", []byte(`{"title":"A"}`), 15*time.Minute))

	value, ok, err := c.Get(ctx, "scrape:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"title":"A"}`, string(value))

	now = now.Add(15 * time.Minute)
	_, ok, err = c.Get(ctx, "scrape:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemory(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Get", ctx, "storefront:scrape:x").Return(`{"ok":true}`, nil)

		value, ok, err := NewRedis(client).Get(ctx, "scrape:x")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"ok":true}`, string(value))
		client.AssertExpectations(t)
	})

	t.Run("miss", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Get", ctx, "storefront:scrape:y").Return("", redis.Nil)

		_, ok, err := NewRedis(client).Get(ctx, "scrape:y")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("error", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Get", ctx, "storefront:scrape:z").Return("", errors.New("connection refused"))

		_, ok, err := NewRedis(client).Get(ctx, "scrape:z")

		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("set with ttl", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Set", ctx, "storefront:raindrop:1,2", []byte("{}"), 900*time.Second).Return(nil)

		err := NewRedis(client).Set(ctx, "raindrop:1,2", []byte("{}"), 900*time.Second)

		require.NoError(t, err)
		client.AssertExpectations(t)
	})
}

func TestNewBackends(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	c, err := New(ctx, Config{}, logger)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, c)

	c, err = New(ctx, Config{Backend: BackendMemory, Size: 8}, logger)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(ctx, Config{Backend: "memcached"}, logger)
	assert.Error(t, err)
}
