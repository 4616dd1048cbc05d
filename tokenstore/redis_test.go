package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisStoreContract(t *testing.T) {
	s, _ := newRedisStore(t)
	storeUnderTest(t, s)
}

func TestRedisStoreUsesPrefixedKeys(t *testing.T) {
	s, mr := newRedisStore(t)

	if err := s.Save(context.Background(), Pair{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := mr.Get("careauth:session:accessToken"); got != "a" {
		t.Fatalf("access key = %q", got)
	}
	if got, _ := mr.Get("careauth:session:refreshToken"); got != "r" {
		t.Fatalf("refresh key = %q", got)
	}
}

func TestRedisStoreSweepsHalfPair(t *testing.T) {
	s, mr := newRedisStore(t)

	// Simulate an interrupted save: only one key present.
	mr.Set("careauth:session:accessToken", "orphan")

	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load = %v, want ErrNotFound", err)
	}
	if mr.Exists("careauth:session:accessToken") {
		t.Fatal("orphan key survived the sweep")
	}
}
