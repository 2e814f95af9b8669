package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"fintrack/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New(context.Background(), "redis://"+mr.Addr()+"/0", "fintrack")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	if _, err := s.Get(ctx, storage.TransactionsKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, storage.TransactionsKey, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, storage.TransactionsKey)
	if err != nil || string(got) != "[]" {
		t.Fatalf("unexpected blob %q err=%v", got, err)
	}

	raw, err := mr.Get("fintrack:" + storage.TransactionsKey)
	if err != nil || raw != "[]" {
		t.Fatalf("expected prefixed key in redis, got %q err=%v", raw, err)
	}
}

func TestStoreServerDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	if err := s.Set(context.Background(), storage.BudgetsKey, []byte(`[]`)); err == nil {
		t.Fatal("expected error when server is down")
	}
}

func TestNewBadURL(t *testing.T) {
	if _, err := New(context.Background(), "not-a-url", ""); err == nil {
		t.Fatal("expected parse error")
	}
}
