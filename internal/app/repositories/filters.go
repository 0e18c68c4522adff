package repositories

import (
	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// ItemFilter narrows an item listing. Kind is required.
type ItemFilter struct {
	Kind        models.ItemKind
	Statuses    []models.ItemStatus
	OwnerID     *uuid.UUID
	Query       string
	Location    string
	Campus      string // lost items only
	Page        int
	Size        int
	OldestFirst bool
}

// ClaimFilter narrows a claim listing
type ClaimFilter struct {
	Status     *models.ClaimStatus
	ClaimantID *uuid.UUID
	ItemID     *uuid.UUID
	Page       int
	Size       int
}

// ActivityLogFilter narrows an activity log listing
type ActivityLogFilter struct {
	AdminID    *uuid.UUID
	EntityType string
	EntityID   *uuid.UUID
	Action     string
	Page       int
	Size       int
}

// NotificationFilter narrows a user's notifications
type NotificationFilter struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Page       int
	Size       int
}
