package tracking

import "github.com/eldavido7/taxi-tracker/internal/presence"

type PollStatus string

// The three viewer-facing liveness states. They are mutually exclusive:
// "live" and "stale" both carry a position, "ended" never does.
const (
	StatusLive  PollStatus = "live"
	StatusStale PollStatus = "stale"
	StatusEnded PollStatus = "ended"
)

type ReportRequest struct {
	SessionID string   `json:"session_id"`
	DriverID  string   `json:"driver_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type PollResult struct {
	Status   PollStatus         `json:"status"`
	Position *presence.Position `json:"position,omitempty"`
}
