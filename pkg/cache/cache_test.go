package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected v, got %v (%v)", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss")
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.SetWithTTL("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestDeleteAndInvalidatePrefix(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("doctors:all", 1)
	c.Set("doctors:d1", 2)
	c.Set("users:u1", 3)

	c.Invalidate("doctors:")
	if _, ok := c.Get("doctors:all"); ok {
		t.Fatal("prefix invalidation missed doctors:all")
	}
	if _, ok := c.Get("users:u1"); !ok {
		t.Fatal("prefix invalidation removed unrelated key")
	}

	c.Delete("users:u1")
	if _, ok := c.Get("users:u1"); ok {
		t.Fatal("delete did not remove key")
	}
}

func TestGetOrSet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	calls := 0
	fallback := func(context.Context) (interface{}, error) {
		calls++
		return "computed", nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrSet(context.Background(), "k", fallback)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "computed" {
			t.Fatalf("got %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("fallback should run once, ran %d times", calls)
	}

	boom := errors.New("boom")
	_, err := c.GetOrSet(context.Background(), "other", func(context.Context) (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fallback error, got %v", err)
	}
	if _, ok := c.Get("other"); ok {
		t.Fatal("failed fallback must not cache")
	}
}
