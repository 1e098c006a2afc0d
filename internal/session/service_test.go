package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query failed")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestCreateAndGetSession(t *testing.T) {
	mock := newMock(t)

	startedAt := time.Now()
	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs(pgxmock.AnyArg(), "user-1", "driver-1", "6.5244,3.3792", "6.4281,3.4219", "active", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"started_at", "status"}).AddRow(startedAt, "active"))

	svc := NewService(mock)
	sess, err := svc.Create(context.Background(), Session{
		UserID:      "user-1",
		DriverID:    "driver-1",
		Origin:      "6.5244,3.3792",
		Destination: "6.4281,3.4219",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" || sess.Status != StatusActive {
		t.Fatalf("unexpected session: %+v", sess)
	}

	mock.ExpectQuery(`SELECT id, user_id, driver_id, origin, destination, status, started_at, ended_at, distance_km, duration_sec FROM sessions WHERE id`).
		WithArgs(sess.ID).
		WillReturnRows(sessionRows().
			AddRow(sess.ID, "user-1", "driver-1", sess.Origin, sess.Destination, "active", startedAt, nil, nil, nil))

	loaded, err := svc.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != sess.ID || loaded.Ended() {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}
	if loaded.EndedAt != nil || loaded.DistanceKm != nil {
		t.Fatalf("active session must have nil terminal fields")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func sessionRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "driver_id", "origin", "destination", "status", "started_at", "ended_at", "distance_km", "duration_sec"})
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil)

	cases := []Session{
		{UserID: "u", Origin: "1,2", Destination: "3,4"},
		{UserID: "u", DriverID: "d", Destination: "3,4"},
		{UserID: "u", DriverID: "d", Origin: "1,2"},
	}
	for _, c := range cases {
		if _, err := svc.Create(context.Background(), c); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("expected ErrMissingFields for %+v, got %v", c, err)
		}
	}

	_, err := svc.Create(context.Background(), Session{
		UserID: "u", DriverID: "d", Origin: "not-a-pair", Destination: "3,4",
	})
	if err == nil {
		t.Fatalf("expected coordinate parse error")
	}
}

func TestGetNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, user_id, driver_id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEndSessionOnce(t *testing.T) {
	mock := newMock(t)

	endedAt := time.Now()
	distance := 5.2
	mock.ExpectQuery(`UPDATE sessions`).
		WithArgs("sess-1", "user-1", &distance, (*int64)(nil)).
		WillReturnRows(sessionRows().
			AddRow("sess-1", "user-1", "driver-1", "1,2", "3,4", "ended", endedAt.Add(-time.Hour), &endedAt, &distance, nil))

	svc := NewService(mock)
	sess, err := svc.End(context.Background(), "sess-1", "user-1", &distance, nil)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !sess.Ended() || sess.EndedAt == nil || *sess.DistanceKm != 5.2 {
		t.Fatalf("unexpected ended session: %+v", sess)
	}
	if sess.DurationSec != nil {
		t.Fatalf("duration must stay nil when not supplied")
	}
}

func TestEndSessionAlreadyEnded(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`UPDATE sessions`).
		WithArgs("sess-1", "user-1", (*float64)(nil), (*int64)(nil)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT status, user_id FROM sessions`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "user_id"}).AddRow("ended", "user-1"))

	svc := NewService(mock)
	if _, err := svc.End(context.Background(), "sess-1", "user-1", nil, nil); !errors.Is(err, ErrAlreadyEnded) {
		t.Fatalf("expected ErrAlreadyEnded, got %v", err)
	}
}

func TestEndSessionNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`UPDATE sessions`).
		WithArgs("missing", "user-1", (*float64)(nil), (*int64)(nil)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT status, user_id FROM sessions`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	if _, err := svc.End(context.Background(), "missing", "user-1", nil, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEndSessionNotOwner(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`UPDATE sessions`).
		WithArgs("sess-1", "intruder", (*float64)(nil), (*int64)(nil)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT status, user_id FROM sessions`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "user_id"}).AddRow("active", "user-1"))

	svc := NewService(mock)
	if _, err := svc.End(context.Background(), "sess-1", "intruder", nil, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	mock := newMock(t)

	started := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, driver_id, origin, destination, status, started_at, ended_at, distance_km, duration_sec FROM sessions WHERE user_id`).
		WithArgs("user-1").
		WillReturnRows(sessionRows().
			AddRow("sess-2", "user-1", "driver-2", "1,2", "3,4", "active", started, nil, nil, nil).
			AddRow("sess-1", "user-1", "driver-1", "1,2", "3,4", "ended", started.Add(-time.Hour), &started, nil, nil))

	svc := NewService(mock)
	sessions, err := svc.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "sess-2" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByUserQueryError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, user_id, driver_id`).
		WithArgs("user-1").
		WillReturnError(errQuery)

	svc := NewService(mock)
	if _, err := svc.ListByUser(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}
