package models

import "time"

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// EmailLog is the audit record of one outbound message.
type EmailLog struct {
	ID         string
	To         string
	Subject    string
	Text       string
	HTML       string
	Attachment *Attachment
	Status     EmailStatus
	Error      string
	CreatedAt  time.Time
}
