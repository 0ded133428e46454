package models

import "time"

type Direction string

const (
	DirectionNone Direction = ""
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
)

func (d Direction) Valid() bool {
	return d == DirectionNone || d == DirectionIn || d == DirectionOut
}

// Timestamp is one attendance event: the photos a user took when clocking in or out.
type Timestamp struct {
	ID        string
	UserID    string
	Direction Direction
	Pictures  []string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its retention boundary at now.
func (t Timestamp) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
