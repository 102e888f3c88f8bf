package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client), mr
}

func TestSaveAndLookup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRefreshSession(ctx, "hash-1", "user_abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}

	user, err := s.LookupRefreshSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if user.ID != "user_abc" {
		t.Errorf("user id = %q, want user_abc", user.ID)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.LookupRefreshSession(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestRevoke(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRefreshSession(ctx, "hash-2", "user_abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.RevokeRefreshSession(ctx, "hash-2"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.LookupRefreshSession(ctx, "hash-2"); err == nil {
		t.Fatal("expected error after revoke")
	}
}

func TestTokenExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRefreshSession(ctx, "hash-3", "user_abc", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := s.LookupRefreshSession(ctx, "hash-3"); err == nil {
		t.Fatal("expected error after expiry")
	}
}
