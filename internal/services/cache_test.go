package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	stored := []TestCase{{ID: 1, Input: "2 3", Expected: "5"}}
	if err := cache.Set(ctx, "problem:42:testcases", stored, time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var loaded []TestCase
	if err := cache.Get(ctx, "problem:42:testcases", &loaded); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Expected != "5" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestCacheMissAndDelete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	var dest int
	if err := cache.Get(ctx, "missing", &dest); err == nil {
		t.Fatalf("Get on missing key returned nil error")
	}

	if err := cache.Set(ctx, "refresh_token:abc", 7, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cache.Delete(ctx, "refresh_token:abc"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := cache.Get(ctx, "refresh_token:abc", &dest); err == nil {
		t.Fatalf("Get after Delete returned nil error")
	}
}

func TestCacheExpiration(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var dest string
	if err := cache.Get(ctx, "k", &dest); err == nil {
		t.Fatalf("Get after expiry returned nil error")
	}
}
