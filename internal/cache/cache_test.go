package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*Helper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewHelper(client, "test:"), mr
}

func TestHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	if err := helper.Set(ctx, "k1", payload{Name: "go", Score: 88}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "k1", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "go" || got.Score != 88 {
		t.Errorf("got %+v, want {go 88}", got)
	}
}

func TestHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var dest string
	err := helper.Get(context.Background(), "absent", &dest)
	if err != ErrCacheNotFound {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "k", &dest); err != ErrCacheNotAvailable {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
}

func TestHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]int{"n": 42}, nil
	}

	var first map[string]int
	if err := helper.CacheOrExecute(ctx, "k", &first, time.Minute, fetch); err != nil {
		t.Fatalf("first CacheOrExecute: %v", err)
	}

	var second map[string]int
	if err := helper.CacheOrExecute(ctx, "k", &second, time.Minute, fetch); err != nil {
		t.Fatalf("second CacheOrExecute: %v", err)
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if second["n"] != 42 {
		t.Errorf("cached value = %d, want 42", second["n"])
	}
}

func TestHelper_InvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	for _, k := range []string{"person:a:1", "person:a:2", "person:b:1"} {
		if err := helper.Set(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "person:a:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	if mr.Exists("test:person:a:1") || mr.Exists("test:person:a:2") {
		t.Error("pattern keys should be gone")
	}
	if !mr.Exists("test:person:b:1") {
		t.Error("unrelated key should survive")
	}
}
