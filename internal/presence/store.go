package presence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/eldavido7/taxi-tracker/internal/shared/geo"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound          = errors.New("position not found")
	ErrEmptyKey          = errors.New("tracking key required")
	ErrInvalidCoordinate = errors.New("latitude and longitude must be finite numbers")
)

// Position is the single current location record for a tracking key.
type Position struct {
	Key       string    `json:"key"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps at most one Position per tracking key in a Redis hash.
// Records never expire on their own; staleness is a read-time comparison
// against a caller-chosen window, and removal happens only through Delete.
type Store struct {
	redis *redis.Client
	now   func() time.Time
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient, now: time.Now}
}

// NewStoreWithClock is NewStore with a caller-supplied clock, so staleness
// boundaries can be tested without sleeping.
func NewStoreWithClock(redisClient *redis.Client, now func() time.Time) *Store {
	return &Store{redis: redisClient, now: now}
}

func redisKey(key string) string {
	return "presence:" + key
}

// Upsert replaces the position for key. UpdatedAt is refreshed on every call,
// including reports that repeat the previous coordinates, so the record
// doubles as a liveness signal.
func (s *Store) Upsert(ctx context.Context, key string, lat, lng float64) (Position, error) {
	if key == "" {
		return Position{}, ErrEmptyKey
	}
	if !geo.Finite(lat, lng) {
		return Position{}, ErrInvalidCoordinate
	}

	p := Position{Key: key, Latitude: lat, Longitude: lng, UpdatedAt: s.now().UTC()}
	err := s.redis.HSet(ctx, redisKey(key),
		"latitude", strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude", strconv.FormatFloat(lng, 'f', -1, 64),
		"updated_at", strconv.FormatInt(p.UpdatedAt.UnixNano(), 10),
	).Err()
	if err != nil {
		return Position{}, err
	}
	return p, nil
}

func (s *Store) Get(ctx context.Context, key string) (Position, error) {
	if key == "" {
		return Position{}, ErrEmptyKey
	}

	fields, err := s.redis.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return Position{}, err
	}
	if len(fields) == 0 {
		return Position{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(fields["latitude"], 64)
	if err != nil {
		return Position{}, err
	}
	lng, err := strconv.ParseFloat(fields["longitude"], 64)
	if err != nil {
		return Position{}, err
	}
	nanos, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Key:       key,
		Latitude:  lat,
		Longitude: lng,
		UpdatedAt: time.Unix(0, nanos).UTC(),
	}, nil
}

// Delete removes the record for key. Deleting a key that holds nothing is
// reported as ErrNotFound so callers can tell a redundant stop apart from a
// real one.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	removed, err := s.redis.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// IsStale reports whether p's last report is older than ttl. The window is
// policy owned by the caller: the poll path uses a short one to decide
// live vs. stale, the driver detail path a longer one for "still reporting".
func (s *Store) IsStale(p Position, ttl time.Duration) bool {
	return s.now().Sub(p.UpdatedAt) > ttl
}
