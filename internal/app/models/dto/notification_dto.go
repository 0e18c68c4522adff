package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// NotificationResponse represents a notification
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type" example:"claim_approved"`
	RelatedID uuid.UUID  `json:"relatedId"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// MarkAllReadResponse reports how many notifications were marked
type MarkAllReadResponse struct {
	Updated int64 `json:"updated" example:"3"`
}

// FromNotifications converts a list of notifications
func FromNotifications(list []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			RelatedID: n.RelatedID,
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		})
	}
	return out
}

// ActivityLogFilterRequest narrows the audit trail
type ActivityLogFilterRequest struct {
	AdminID    string `json:"adminId" form:"adminId" binding:"omitempty,uuid"`
	EntityType string `json:"entityType" form:"entityType" binding:"omitempty,oneof=lost_item found_item claim user"`
	EntityID   string `json:"entityId" form:"entityId" binding:"omitempty,uuid"`
	Action     string `json:"action" form:"action"`
}

// ActivityLogResponse represents an audit entry
type ActivityLogResponse struct {
	ID         uuid.UUID              `json:"id"`
	AdminID    uuid.UUID              `json:"adminId"`
	Action     string                 `json:"action" example:"approved_claim"`
	EntityType string                 `json:"entityType" example:"claim"`
	EntityID   uuid.UUID              `json:"entityId"`
	Details    map[string]interface{} `json:"details"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// FromActivityLogs converts a list of audit entries
func FromActivityLogs(list []*models.ActivityLog) []ActivityLogResponse {
	out := make([]ActivityLogResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ActivityLogResponse{
			ID:         e.ID,
			AdminID:    e.AdminID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
