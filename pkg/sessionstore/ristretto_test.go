package sessionstore

import (
	"context"
	"testing"
	"time"
)

func newTestRistretto(t *testing.T) *Ristretto {
	t.Helper()

	store, err := NewRistretto()
	if err != nil {
		t.Fatalf("NewRistretto failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRistretto(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		store := newTestRistretto(t)
		if store == nil {
			t.Fatal("store should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		store, err := NewRistretto(
			WithRistrettoNumCounters(1e4),
			WithRistrettoMaxCost(1e3),
		)
		if err != nil {
			t.Fatalf("NewRistretto failed: %v", err)
		}
		defer func() { _ = store.Close() }()
	})

	t.Run("from nil client", func(t *testing.T) {
		_, err := NewRistrettoFromClient(nil)
		if err != ErrNilClient {
			t.Errorf("expected ErrNilClient, got %v", err)
		}
	})
}

func TestRistretto_SetGet(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		store := newTestRistretto(t)
		if err := store.Set(ctx, "k", "v", 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		// ristretto 写入异步，写后立读前必须 Wait
		store.Wait()

		value, ok, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || value != "v" {
			t.Errorf("Get = (%q, %v), expected (\"v\", true)", value, ok)
		}
	})

	t.Run("missing key is not an error", func(t *testing.T) {
		store := newTestRistretto(t)
		value, ok, err := store.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok || value != "" {
			t.Errorf("Get = (%q, %v), expected miss", value, ok)
		}
	})
}

func TestRistretto_TTL(t *testing.T) {
	ctx := context.Background()
	store := newTestRistretto(t)

	_ = store.Set(ctx, "k", "v", 20*time.Millisecond)
	store.Wait()

	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("key should be alive right after set")
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("key should have expired")
	}
}

func TestRistretto_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestRistretto(t)

	_ = store.Set(ctx, "k", "v", 0)
	store.Wait()

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("key should be gone after delete")
	}
}

func TestRistretto_Close(t *testing.T) {
	ctx := context.Background()

	store, err := NewRistretto()
	if err != nil {
		t.Fatalf("NewRistretto failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != ErrClosed {
		t.Errorf("second Close = %v, expected ErrClosed", err)
	}

	if _, _, err := store.Get(ctx, "k"); err != ErrClosed {
		t.Errorf("Get after Close = %v, expected ErrClosed", err)
	}
	if err := store.Set(ctx, "k", "v", 0); err != ErrClosed {
		t.Errorf("Set after Close = %v, expected ErrClosed", err)
	}
	if err := store.Delete(ctx, "k"); err != ErrClosed {
		t.Errorf("Delete after Close = %v, expected ErrClosed", err)
	}
}
