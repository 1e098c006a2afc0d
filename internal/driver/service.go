package driver

import (
	"context"
	"errors"

	"github.com/eldavido7/taxi-tracker/internal/db"
	"github.com/eldavido7/taxi-tracker/internal/presence"
	"github.com/eldavido7/taxi-tracker/internal/tracking"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("driver not found")
	ErrMissingFields = errors.New("name and phone are required")
)

type Service struct {
	db       db.Querier
	presence *presence.Store
}

func NewService(db db.Querier, store *presence.Store) *Service {
	return &Service{db: db, presence: store}
}

func (s *Service) Create(ctx context.Context, input Driver) (Driver, error) {
	if input.Name == "" || input.Phone == "" {
		return Driver{}, ErrMissingFields
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO drivers (id, user_id, name, phone, vehicle, plate)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, input.ID, input.UserID, input.Name, input.Phone, input.Vehicle, input.Plate)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Driver{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Driver, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, phone, vehicle, plate, created_at, updated_at
		FROM drivers WHERE id=$1
	`, id)
	var d Driver
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Phone, &d.Vehicle, &d.Plate, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Driver{}, ErrNotFound
	}
	if err != nil {
		return Driver{}, err
	}
	return d, nil
}

// Profile wraps Get with the reporting flag: true when the driver's presence
// record exists and was refreshed within tracking.ActiveWindow.
func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{Driver: d}
	pos, err := s.presence.Get(ctx, tracking.DriverKey(id).String())
	if err == nil && !s.presence.IsStale(pos, tracking.ActiveWindow) {
		p.Reporting = true
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Driver) (Driver, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return Driver{}, err
	}
	if patch.Name != "" {
		d.Name = patch.Name
	}
	if patch.Phone != "" {
		d.Phone = patch.Phone
	}
	if patch.Vehicle != "" {
		d.Vehicle = patch.Vehicle
	}
	if patch.Plate != "" {
		d.Plate = patch.Plate
	}

	row := s.db.QueryRow(ctx, `
		UPDATE drivers
		SET name=$2, phone=$3, vehicle=$4, plate=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, d.ID, d.Name, d.Phone, d.Vehicle, d.Plate)
	if err := row.Scan(&d.UpdatedAt); err != nil {
		return Driver{}, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM drivers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, phone, vehicle, plate, created_at, updated_at
		FROM drivers WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Phone, &d.Vehicle, &d.Plate, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}
