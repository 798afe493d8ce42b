package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = fmt.Errorf("cache not available")
	ErrCacheNotFound     = fmt.Errorf("cache not found")
)

// Helper provides cache-aside operations for one key namespace. A nil
// client degrades gracefully: writes become no-ops and reads miss.
type Helper struct {
	client *redis.Client
	prefix string
}

func NewHelper(client *redis.Client, prefix string) *Helper {
	return &Helper{client: client, prefix: prefix}
}

// Config pairs a TTL with a key prefix for one data class.
type Config struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Catalog data changes rarely; longest TTL in the service.
	CatalogConfig = Config{TTL: 15 * time.Minute, Prefix: "catalog:"}

	// Sessions are hot during an attempt but mutate on every answer.
	SessionConfig = Config{TTL: 1 * time.Minute, Prefix: "session:"}

	// Results are immutable once written.
	ResultConfig = Config{TTL: 10 * time.Minute, Prefix: "result:"}

	// Aggregated reports are expensive to rebuild.
	ReportConfig = Config{TTL: 5 * time.Minute, Prefix: "report:"}
)

func (h *Helper) key(key string) string {
	return h.prefix + key
}

// Get retrieves and unmarshals a cached value.
func (h *Helper) Get(ctx context.Context, key string, dest interface{}) error {
	if h.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := h.client.Get(ctx, h.key(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores a value.
func (h *Helper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if h.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return h.client.Set(ctx, h.key(key), data, ttl).Err()
}

// Delete removes one or more keys, pipelined when there are several.
func (h *Helper) Delete(ctx context.Context, keys ...string) error {
	if h.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = h.key(k)
	}

	if len(full) > 1 {
		pipe := h.client.Pipeline()
		pipe.Del(ctx, full...)
		_, err := pipe.Exec(ctx)
		return err
	}
	return h.client.Del(ctx, full...).Err()
}

// InvalidatePattern removes all keys matching a pattern, using SCAN.
func (h *Helper) InvalidatePattern(ctx context.Context, pattern string) error {
	if h.client == nil {
		return nil
	}

	fullPattern := h.key(pattern)
	var cursor uint64
	var keys []string

	for {
		scanKeys, next, err := h.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan error: %w", err)
		}
		keys = append(keys, scanKeys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}
	return h.client.Del(ctx, keys...).Err()
}

// CacheOrExecute implements the cache-aside pattern: return the cached
// value when present, otherwise run fetch and populate the cache.
func (h *Helper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() (interface{}, error)) error {
	err := h.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheNotFound && err != ErrCacheNotAvailable {
		slog.InfoContext(ctx, "cache get error, falling through to fetch", "error", err, "key", key)
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	if err := h.Set(ctx, key, value, ttl); err != nil {
		slog.ErrorContext(ctx, "cache set error", "error", err, "key", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Manager groups the service's cache namespaces.
type Manager struct {
	Catalog *Helper
	Session *Helper
	Result  *Helper
	User    *Helper
	Report  *Helper
}

func NewManager(client *redis.Client) *Manager {
	if client == nil {
		return &Manager{
			Catalog: NewHelper(nil, ""),
			Session: NewHelper(nil, ""),
			Result:  NewHelper(nil, ""),
			User:    NewHelper(nil, ""),
			Report:  NewHelper(nil, ""),
		}
	}

	return &Manager{
		Catalog: NewHelper(client, CatalogConfig.Prefix),
		Session: NewHelper(client, SessionConfig.Prefix),
		Result:  NewHelper(client, ResultConfig.Prefix),
		User:    NewHelper(client, "user:"),
		Report:  NewHelper(client, ReportConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.Catalog.client == nil {
		return ErrCacheNotAvailable
	}
	if _, err := m.Catalog.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// InvalidateResult drops cached result views after analysis updates.
func (m *Manager) InvalidateResult(ctx context.Context, resultID uint, personID string) {
	if err := m.Result.Delete(ctx, fmt.Sprintf("id:%d", resultID)); err != nil {
		slog.ErrorContext(ctx, "failed to delete result cache", "error", err, "result_id", resultID)
	}
	if err := m.Result.InvalidatePattern(ctx, fmt.Sprintf("person:%s:*", personID)); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate person result cache", "error", err, "person_id", personID)
	}
	if err := m.Report.InvalidatePattern(ctx, "*"); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate report cache", "error", err)
	}
}
