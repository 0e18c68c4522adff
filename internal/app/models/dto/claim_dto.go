package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// ClaimRequest holds the form fields of a claim; evidence files arrive as "files"
type ClaimRequest struct {
	ItemID      string `json:"itemId" form:"itemId" example:"4f9c2a8e-7a43-4a55-9a7d-0c3b7e4d2b11"`
	ItemType    string `json:"itemType" form:"itemType" example:"found"`
	Explanation string `json:"explanation" form:"explanation" example:"It has my initials carved into the handle"`
}

// ClaimFilterRequest narrows the admin claim queue
type ClaimFilterRequest struct {
	Status string `json:"status" form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ItemID string `json:"itemId" form:"itemId" binding:"omitempty,uuid"`
}

// ClaimResponse represents a claim
type ClaimResponse struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       uuid.UUID  `json:"itemId"`
	ItemType     string     `json:"itemType" example:"found"`
	ClaimantID   uuid.UUID  `json:"claimantId"`
	EvidenceURLs []string   `json:"evidenceUrls"`
	Explanation  string     `json:"explanation"`
	Status       string     `json:"status" example:"pending" enums:"pending,approved,rejected"`
	AdminID      *uuid.UUID `json:"adminId,omitempty"`
	AdminNote    *string    `json:"adminNote,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
}

// FromClaim converts a claim to a ClaimResponse
func FromClaim(c *models.Claim) ClaimResponse {
	return ClaimResponse{
		ID:           c.ID,
		ItemID:       c.ItemID,
		ItemType:     string(c.ItemType),
		ClaimantID:   c.ClaimantID,
		EvidenceURLs: c.EvidenceURLs,
		Explanation:  c.Explanation,
		Status:       string(c.Status),
		AdminID:      c.AdminID,
		AdminNote:    c.AdminNote,
		CreatedAt:    c.CreatedAt,
		ReviewedAt:   c.ReviewedAt,
	}
}

// FromClaims converts a list of claims
func FromClaims(claims []*models.Claim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, FromClaim(c))
	}
	return out
}
