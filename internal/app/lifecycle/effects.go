package lifecycle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// Effects are the best-effort writes that follow a successful transition
type Effects struct {
	Notifications []models.Notification
	Audit         models.ActivityLog
}

// ItemEffects plans the notification and audit entry for an item action performed by adminID.
// item is the record after the transition.
func ItemEffects(action Action, adminID uuid.UUID, item *models.Item) Effects {
	details := map[string]interface{}{
		"object_name": item.ObjectName,
		"item_type":   string(item.Kind()),
		"status":      string(item.Status),
	}
	if item.AdminNote != nil {
		details["admin_note"] = *item.AdminNote
	}

	eff := Effects{
		Audit: models.ActivityLog{
			AdminID:    adminID,
			EntityType: models.EntityTypeForKind(item.Kind()),
			EntityID:   item.ID,
			Details:    details,
		},
	}

	switch action {
	case ActionApproveSubmission:
		eff.Audit.Action = models.ActionApprovedSubmission
		eff.Notifications = append(eff.Notifications, models.Notification{
			UserID:    item.OwnerID,
			Title:     "Submission approved",
			Message:   fmt.Sprintf("Your %s item report \"%s\" is now publicly listed.", item.Kind(), item.ObjectName),
			Type:      models.NotificationSubmissionApproved,
			RelatedID: item.ID,
		})
	case ActionRejectSubmission:
		eff.Audit.Action = models.ActionRejectedSubmission
		eff.Notifications = append(eff.Notifications, models.Notification{
			UserID:    item.OwnerID,
			Title:     "Submission rejected",
			Message:   fmt.Sprintf("Your %s item report \"%s\" was rejected. Reason: %s", item.Kind(), item.ObjectName, noteText(item.AdminNote)),
			Type:      models.NotificationSubmissionRejected,
			RelatedID: item.ID,
		})
	case ActionArchive:
		eff.Audit.Action = models.ActionArchivedItem
	}
	return eff
}

// ClaimEffects plans the notification and audit entry for a claim action performed by adminID.
// claim is the record after the transition; objectName names the claimed item in the message.
func ClaimEffects(action Action, adminID uuid.UUID, claim *models.Claim, objectName string) Effects {
	details := map[string]interface{}{
		"item_id":     claim.ItemID.String(),
		"item_type":   string(claim.ItemType),
		"claimant_id": claim.ClaimantID.String(),
		"status":      string(claim.Status),
	}
	if claim.AdminNote != nil {
		details["admin_note"] = *claim.AdminNote
	}

	eff := Effects{
		Audit: models.ActivityLog{
			AdminID:    adminID,
			EntityType: models.EntityClaim,
			EntityID:   claim.ID,
			Details:    details,
		},
	}

	switch action {
	case ActionApproveClaim:
		eff.Audit.Action = models.ActionApprovedClaim
		eff.Notifications = append(eff.Notifications, models.Notification{
			UserID:    claim.ClaimantID,
			Title:     "Claim approved",
			Message:   fmt.Sprintf("Your claim for \"%s\" was approved. Contact the lost and found office to collect it.", objectName),
			Type:      models.NotificationClaimApproved,
			RelatedID: claim.ID,
		})
	case ActionRejectClaim:
		eff.Audit.Action = models.ActionRejectedClaim
		eff.Notifications = append(eff.Notifications, models.Notification{
			UserID:    claim.ClaimantID,
			Title:     "Claim rejected",
			Message:   fmt.Sprintf("Your claim for \"%s\" was rejected. Reason: %s", objectName, noteText(claim.AdminNote)),
			Type:      models.NotificationClaimRejected,
			RelatedID: claim.ID,
		})
	}
	return eff
}

func noteText(note *string) string {
	if note == nil {
		return ""
	}
	return *note
}
