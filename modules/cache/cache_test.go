package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Integration tests require Redis running on localhost:6379.
const testRedisAddr = "localhost:6379"

// setupTestCache creates a cache instance for testing. Returns the cache and
// a cleanup function.
func setupTestCache(t *testing.T, prefix string) (*Cache, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	cleanupKeys(ctx, client, prefix+"*")

	c := New(client, prefix, 5*time.Minute)

	cleanup := func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	}

	return c, cleanup
}

func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

func TestNew(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	defer client.Close()

	c := New(client, "test:", 10*time.Minute)

	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.prefix != "test:" {
		t.Errorf("prefix = %q, want %q", c.prefix, "test:")
	}
	if c.ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want %v", c.ttl, 10*time.Minute)
	}
	if c.stats == nil {
		t.Error("stats is nil")
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:setget:")
	defer cleanup()

	ctx := context.Background()

	type payload struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	want := payload{ID: "t1", Title: "Buy groceries"}
	if err := c.Set(ctx, "task1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got payload
	found, err := c.Get(ctx, "task1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() returned found = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:miss:")
	defer cleanup()

	var result string
	found, err := c.Get(context.Background(), "nonexistent", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() returned found = true for nonexistent key, want false")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:ttl:")
	defer cleanup()

	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "expiring", "value", 100*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}

	var result string
	found, err := c.Get(ctx, "expiring", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() immediately after Set should find the key")
	}

	time.Sleep(200 * time.Millisecond)

	found, err = c.Get(ctx, "expiring", &result)
	if err != nil {
		t.Fatalf("Get() after expiration error = %v", err)
	}
	if found {
		t.Error("Get() after TTL expiration should return found = false")
	}
}

func TestCache_Delete(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:delete:")
	defer cleanup()

	ctx := context.Background()

	if err := c.Set(ctx, "to-delete", "some value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "to-delete"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var result string
	found, _ := c.Get(ctx, "to-delete", &result)
	if found {
		t.Error("key should not exist after deletion")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete() of missing key: error = %v", err)
	}
}

func TestCache_KeyPrefix(t *testing.T) {
	c, cleanup := setupTestCache(t, "myprefix:")
	defer cleanup()

	ctx := context.Background()

	if err := c.Set(ctx, "mykey", "myvalue"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	result, err := c.client.Get(ctx, "myprefix:mykey").Result()
	if err != nil {
		t.Fatalf("direct Redis Get error = %v", err)
	}
	if result != `"myvalue"` { // JSON encoded
		t.Errorf("stored value = %q, want %q", result, `"myvalue"`)
	}
}

func TestCache_Snapshot(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:stats:")
	defer cleanup()

	ctx := context.Background()

	c.Set(ctx, "stats-test", "value")

	var result string
	c.Get(ctx, "stats-test", &result)  // hit
	c.Get(ctx, "nonexistent", &result) // miss
	c.Get(ctx, "stats-test", &result)  // hit
	c.Delete(ctx, "stats-test")

	stats := c.Snapshot()

	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Deletes != 1 {
		t.Errorf("Deletes = %d, want 1", stats.Deletes)
	}
}
