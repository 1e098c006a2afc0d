package driver

import "time"

type Driver struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Vehicle   string    `json:"vehicle"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is a Driver plus the live "reporting" flag derived from presence.
type Profile struct {
	Driver
	Reporting bool `json:"reporting"`
}
