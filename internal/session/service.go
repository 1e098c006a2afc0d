package session

import (
	"context"
	"errors"
	"time"

	"github.com/eldavido7/taxi-tracker/internal/db"
	"github.com/eldavido7/taxi-tracker/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrAlreadyEnded  = errors.New("session already ended")
	ErrNotOwner      = errors.New("session owned by another user")
	ErrMissingFields = errors.New("driver_id, origin and destination required")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

const sessionColumns = `id, user_id, driver_id, origin, destination, status, started_at, ended_at, distance_km, duration_sec`

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.DriverID, &s.Origin, &s.Destination,
		&s.Status, &s.StartedAt, &s.EndedAt, &s.DistanceKm, &s.DurationSec)
	return s, err
}

func (s *Service) Create(ctx context.Context, input Session) (Session, error) {
	if input.DriverID == "" || input.Origin == "" || input.Destination == "" {
		return Session{}, ErrMissingFields
	}
	if _, _, err := geo.ParseLatLng(input.Origin); err != nil {
		return Session{}, err
	}
	if _, _, err := geo.ParseLatLng(input.Destination); err != nil {
		return Session{}, err
	}

	input.ID = uuid.NewString()
	input.Status = StatusActive
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, driver_id, origin, destination, status, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING started_at, status
	`, input.ID, input.UserID, input.DriverID, input.Origin, input.Destination, input.Status, input.StartedAt)
	if err := row.Scan(&input.StartedAt, &input.Status); err != nil {
		return Session{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id=$1
	`, id)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE user_id=$1
		ORDER BY started_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// End moves a session to its terminal state. The transition is a single
// conditional UPDATE so two concurrent calls on the same id resolve to one
// success and one ErrAlreadyEnded, never two successes. A repeated End is a
// conflict, not a no-op: rejecting it keeps callers from double-attaching
// trip metrics.
func (s *Service) End(ctx context.Context, id, userID string, distanceKm *float64, durationSec *int64) (Session, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE sessions
		SET status='ended', ended_at=now(), distance_km=$3, duration_sec=$4
		WHERE id=$1 AND user_id=$2 AND status='active'
		RETURNING `+sessionColumns+`
	`, id, userID, distanceKm, durationSec)

	sess, err := scanSession(row)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Session{}, err
	}

	// The update matched nothing: work out which rejection this is.
	var status, owner string
	err = s.db.QueryRow(ctx, `SELECT status, user_id FROM sessions WHERE id=$1`, id).Scan(&status, &owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if status == StatusEnded {
		return Session{}, ErrAlreadyEnded
	}
	return Session{}, ErrNotOwner
}
