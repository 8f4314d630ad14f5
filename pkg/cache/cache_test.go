package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	opts := RouteKeyOpts{GridPitch: 1, BendRadius: 10, Headings: 4}
	rk1 := k.RouteKey("req", "obs", opts)
	if rk1 != k.RouteKey("req", "obs", opts) {
		t.Error("RouteKey should be deterministic")
	}
	if !strings.HasPrefix(rk1, "route:") {
		t.Errorf("RouteKey unexpected prefix: %s", rk1)
	}

	// Every input participates in the key
	opts2 := opts
	opts2.BendRadius = 20
	for name, other := range map[string]string{
		"request":   k.RouteKey("req2", "obs", opts),
		"obstacles": k.RouteKey("req", "obs2", opts),
		"options":   k.RouteKey("req", "obs", opts2),
	} {
		if other == rk1 {
			t.Errorf("different %s should produce a different key", name)
		}
	}

	dk1 := k.DiagramKey("hash123", DiagramKeyOpts{Root: "top", Format: "svg"})
	dk2 := k.DiagramKey("hash123", DiagramKeyOpts{Root: "top", Format: "dot"})
	if dk1 == dk2 {
		t.Error("Different DiagramKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	want := "user:123:" + inner.RouteKey("a", "b", RouteKeyOpts{})
	if got := scoped.RouteKey("a", "b", RouteKeyOpts{}); got != want {
		t.Errorf("ScopedKeyer RouteKey = %s, want %s", got, want)
	}

	diagramKey := scoped.DiagramKey("h", DiagramKeyOpts{})
	if !strings.HasPrefix(diagramKey, "user:123:diagram:") {
		t.Errorf("ScopedKeyer DiagramKey should be prefixed: %s", diagramKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.RouteKey("r", "o", RouteKeyOpts{})
	if key != "prefix:"+NewDefaultKeyer().RouteKey("r", "o", RouteKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestHashJSON(t *testing.T) {
	h1, err := HashJSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("HashJSON error: %v", err)
	}
	h2, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if h1 != h2 {
		t.Error("HashJSON should not depend on map order")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail on unencodable values")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get(key) = hit %v, err %v", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("Get(key) = %q, want %q", data, "value")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of a missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "old", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// A negative ttl is treated as no expiry.
	if _, hit, _ := c.Get(ctx, "old"); !hit {
		t.Error("entry without expiry should hit")
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry should be a miss, got hit %v err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entries should be gone after Clear")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("PHOTONLAYOUT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PHOTONLAYOUT_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{URL: url, Prefix: "photonlayout-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestRedisCacheSetOnceDoesNotRetry(t *testing.T) {
	// Nothing listens on port 1, so every write fails with a network error.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	c := &RedisCache{client: client}
	defer c.Close()

	start := time.Now()
	err := TrySet(context.Background(), c, "key", []byte("value"), time.Minute)
	if err == nil {
		t.Fatal("TrySet should fail without a server")
	}
	if !IsRetryable(err) {
		t.Errorf("network failure should be retryable: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= time.Second {
		t.Errorf("TrySet took %v, should not wait for backoff", elapsed)
	}
}

type countingSetCache struct {
	Cache
	sets, onces int
}

func (c *countingSetCache) Set(context.Context, string, []byte, time.Duration) error {
	c.sets++
	return nil
}

type onceSetCache struct{ countingSetCache }

func (c *onceSetCache) SetOnce(context.Context, string, []byte, time.Duration) error {
	c.onces++
	return nil
}

func TestTrySet(t *testing.T) {
	ctx := context.Background()

	plain := &countingSetCache{Cache: NewNullCache()}
	if err := TrySet(ctx, plain, "k", nil, 0); err != nil {
		t.Fatalf("TrySet: %v", err)
	}
	if plain.sets != 1 {
		t.Errorf("plain cache: Set called %d times, want 1", plain.sets)
	}

	once := &onceSetCache{countingSetCache{Cache: NewNullCache()}}
	if err := TrySet(ctx, once, "k", nil, 0); err != nil {
		t.Fatalf("TrySet: %v", err)
	}
	if once.onces != 1 || once.sets != 0 {
		t.Errorf("once cache: SetOnce %d, Set %d; want 1, 0", once.onces, once.sets)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{URL: "not-a-url"}); err == nil {
		t.Error("NewRedisCache should reject a malformed url")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(errPermanent) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

var errPermanent = errors.New("permanent failure")

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return errPermanent
	})
	if err != errPermanent {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
