package session

import "time"

const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

type Session struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	DriverID    string     `json:"driver_id"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	DistanceKm  *float64   `json:"distance_km,omitempty"`
	DurationSec *int64     `json:"duration_sec,omitempty"`
}

func (s Session) Ended() bool {
	return s.Status == StatusEnded
}
