package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationSubmissionApproved = "submission_approved"
	NotificationSubmissionRejected = "submission_rejected"
	NotificationClaimApproved      = "claim_approved"
	NotificationClaimRejected      = "claim_rejected"
)

// Notification is a message addressed to a single user
type Notification struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	Title     string     `db:"title"`
	Message   string     `db:"message"`
	Type      string     `db:"type"`
	RelatedID uuid.UUID  `db:"related_id"`
	CreatedAt time.Time  `db:"created_at"`
	ReadAt    *time.Time `db:"read_at"`
}

// IsRead reports whether the recipient has seen the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
