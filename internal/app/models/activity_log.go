package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions written to activity_logs
const (
	ActionApprovedSubmission = "approved_submission"
	ActionRejectedSubmission = "rejected_submission"
	ActionArchivedItem       = "archived_item"
	ActionApprovedClaim      = "approved_claim"
	ActionRejectedClaim      = "rejected_claim"
	ActionChangedRole        = "changed_role"
)

// Entity types referenced by activity logs
const (
	EntityLostItem  = "lost_item"
	EntityFoundItem = "found_item"
	EntityClaim     = "claim"
	EntityUser      = "user"
)

// EntityTypeForKind maps an item kind to its activity log entity type
func EntityTypeForKind(kind ItemKind) string {
	if kind == ItemKindLost {
		return EntityLostItem
	}
	return EntityFoundItem
}

// ActivityLog is an append-only audit record of an admin action
type ActivityLog struct {
	ID         uuid.UUID              `db:"id"`
	AdminID    uuid.UUID              `db:"admin_id"`
	Action     string                 `db:"action"`
	EntityType string                 `db:"entity_type"`
	EntityID   uuid.UUID              `db:"entity_id"`
	Details    map[string]interface{} `db:"details"`
	CreatedAt  time.Time              `db:"created_at"`
}
