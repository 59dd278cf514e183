package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"

	keyPrefix = "storefront:"
)

// Cache stores rendered response bodies for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config selects and configures a backend. Size applies to memory, Redis* to redis.
type Config struct {
	Backend       string
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the configured backend. An empty backend disables caching.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return Noop{}, nil
	case BackendMemory:
		return NewMemory(cfg.Size)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("response cache connected", "backend", BackendRedis, "addr", cfg.RedisAddr)
		return NewRedis(client), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Noop never stores anything. It is the default backend.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Noop) Close() error {
	return nil
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process LRU with per-entry expiry.
type Memory struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
	mu      sync.Mutex
}

// NewMemory creates an LRU holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memory{entries: entries, now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expires) {
		m.entries.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Add(key, memoryEntry{value: value, expires: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Close() error {
	m.entries.Purge()
	return nil
}

// RedisClient is the subset of the go-redis client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Redis shares cached responses between instances.
type Redis struct {
	client RedisClient
}

// NewRedis wraps an existing client; keys are namespaced with "storefront:".
func NewRedis(client RedisClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
