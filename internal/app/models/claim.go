package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim is an ownership assertion filed against a found item
type Claim struct {
	ID           uuid.UUID   `db:"id"`
	ItemID       uuid.UUID   `db:"item_id"`
	ItemType     ItemKind    `db:"item_type"`
	ClaimantID   uuid.UUID   `db:"claimant_id"`
	EvidenceURLs []string    `db:"evidence_urls"`
	Explanation  string      `db:"explanation"`
	Status       ClaimStatus `db:"status"`
	AdminID      *uuid.UUID  `db:"admin_id"`
	AdminNote    *string     `db:"admin_note"`
	CreatedAt    time.Time   `db:"created_at"`
	ReviewedAt   *time.Time  `db:"reviewed_at"`
}

// Clone returns a deep copy of the claim
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	out := *c
	out.EvidenceURLs = append([]string(nil), c.EvidenceURLs...)
	out.AdminNote = cloneString(c.AdminNote)
	if c.AdminID != nil {
		id := *c.AdminID
		out.AdminID = &id
	}
	if c.ReviewedAt != nil {
		at := *c.ReviewedAt
		out.ReviewedAt = &at
	}
	return &out
}
