// Package redis implements the optional Redis backend for conversation
// memory windows. Each window is a bounded list: LPUSH newest-first,
// LTRIM to the cap, so eviction happens server-side and the JSON files
// stay out of the hot chat path.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/memory"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Addr is the Redis server address in "host:port" form.
	Addr string

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// WindowCap bounds each memory window.
	WindowCap int

	// WindowTTL expires idle windows. Zero disables expiry.
	WindowTTL time.Duration

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		WindowCap:   memory.DefaultWindowCap,
		WindowTTL:   30 * 24 * time.Hour,
		DialTimeout: 5 * time.Second,
	}
}

// ErrConnection is returned when the Redis connection fails.
var ErrConnection = errors.New("redis: connection failed")

const keyPrefix = "memory:"

// ══════════════════════════════════════════════════════════════════════════════
// MEMORY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MemoryRepository implements memory.Repository over Redis lists.
type MemoryRepository struct {
	client *redis.Client
	cfg    Config
}

// NewMemoryRepository connects to Redis and verifies it with a ping.
func NewMemoryRepository(cfg Config) (*MemoryRepository, error) {
	if cfg.WindowCap <= 0 {
		cfg.WindowCap = memory.DefaultWindowCap
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return &MemoryRepository{client: client, cfg: cfg}, nil
}

// NewMemoryRepositoryWithClient wraps an existing client, for tests.
func NewMemoryRepositoryWithClient(client *redis.Client, cfg Config) *MemoryRepository {
	if cfg.WindowCap <= 0 {
		cfg.WindowCap = memory.DefaultWindowCap
	}
	return &MemoryRepository{client: client, cfg: cfg}
}

// Close closes the Redis connection.
func (r *MemoryRepository) Close() error {
	return r.client.Close()
}

func (r *MemoryRepository) redisKey(key memory.Key) string {
	return keyPrefix + key.String()
}

// Append pushes one exchange and trims the list to the window cap.
func (r *MemoryRepository) Append(ctx context.Context, key memory.Key, ex memory.Exchange) error {
	if strings.TrimSpace(ex.Text) == "" {
		return memory.ErrEmptyExchange
	}

	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("redis: failed to encode exchange: %w", err)
	}

	rkey := r.redisKey(key)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, rkey, data)
	pipe.LTrim(ctx, rkey, 0, int64(r.cfg.WindowCap-1))
	if r.cfg.WindowTTL > 0 {
		pipe.Expire(ctx, rkey, r.cfg.WindowTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to append exchange: %w", err)
	}
	return nil
}

// Window returns the stored window for the key, empty when unknown.
func (r *MemoryRepository) Window(ctx context.Context, key memory.Key) (*memory.Window, error) {
	items, err := r.client.LRange(ctx, r.redisKey(key), 0, int64(r.cfg.WindowCap-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to read window: %w", err)
	}

	win := memory.NewWindow(key, r.cfg.WindowCap)
	// Stored newest-first; the window wants chronological order.
	for i := len(items) - 1; i >= 0; i-- {
		var ex memory.Exchange
		if err := json.Unmarshal([]byte(items[i]), &ex); err != nil {
			return nil, fmt.Errorf("redis: failed to decode exchange: %w", err)
		}
		win.Exchanges = append(win.Exchanges, ex)
	}
	return win, nil
}

// Clear drops the window for the key.
func (r *MemoryRepository) Clear(ctx context.Context, key memory.Key) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear window: %w", err)
	}
	return nil
}
