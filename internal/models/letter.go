package models

import "time"

type LetterStatus string

const (
	LetterStatusPending  LetterStatus = "pending"
	LetterStatusApproved LetterStatus = "approved"
	LetterStatusRejected LetterStatus = "rejected"
)

func (s LetterStatus) Valid() bool {
	switch s {
	case LetterStatusPending, LetterStatusApproved, LetterStatusRejected:
		return true
	}
	return false
}

type Letter struct {
	ID        string
	UserID    string
	Type      string
	Status    LetterStatus
	AdminNote string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Filled on listing.
	UserEmail string
	UserName  string
}
