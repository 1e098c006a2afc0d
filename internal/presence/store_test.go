package presence

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(client)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestUpsertThenGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	written, err := store.Upsert(ctx, "s1", 37.0, -122.0)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Latitude != 37.0 || got.Longitude != -122.0 {
		t.Fatalf("unexpected coordinates: %v,%v", got.Latitude, got.Longitude)
	}
	if !got.UpdatedAt.Equal(written.UpdatedAt) {
		t.Fatalf("updated_at mismatch: %v vs %v", got.UpdatedAt, written.UpdatedAt)
	}
}

func TestUpsertRefreshesLiveness(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	first, err := store.Upsert(ctx, "s1", 6.5, 3.3)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same coordinates, later clock: updated_at must still advance.
	*now = now.Add(10 * time.Second)
	second, err := store.Upsert(ctx, "s1", 6.5, 3.3)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected refreshed timestamp")
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.UpdatedAt.Equal(second.UpdatedAt) {
		t.Fatalf("stored timestamp not refreshed")
	}
}

func TestUpsertValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Upsert(ctx, "", 1, 2); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, err := store.Upsert(ctx, "s1", math.NaN(), 2); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := store.Upsert(ctx, "s1", 1, math.Inf(-1)); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSemantics(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete of unset key: expected ErrNotFound, got %v", err)
	}

	if _, err := store.Upsert(ctx, "s1", 1, 2); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestIsStale(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	p, err := store.Upsert(ctx, "s1", 1, 2)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if store.IsStale(p, 30*time.Second) {
		t.Fatalf("fresh record reported stale")
	}

	*now = now.Add(30 * time.Second)
	if store.IsStale(p, 30*time.Second) {
		t.Fatalf("record at exactly ttl must not be stale")
	}

	*now = now.Add(time.Nanosecond)
	if !store.IsStale(p, 30*time.Second) {
		t.Fatalf("record past ttl must be stale")
	}

	// A different caller window over the same record.
	if store.IsStale(p, 5*time.Minute) {
		t.Fatalf("longer window should still consider the record live")
	}
}
