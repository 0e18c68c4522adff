package lifecycle

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

func TestItemEdgesAreExactlyTheLifecycle(t *testing.T) {
	allowed := map[[2]models.ItemStatus]bool{
		{models.ItemStatusPending, models.ItemStatusApproved}:  true,
		{models.ItemStatusPending, models.ItemStatusRejected}:  true,
		{models.ItemStatusApproved, models.ItemStatusClaimed}:  true,
		{models.ItemStatusApproved, models.ItemStatusResolved}: true,
	}

	for _, from := range models.ItemStatuses {
		for _, to := range models.ItemStatuses {
			assert.Equal(t, allowed[[2]models.ItemStatus{from, to}], CanTransitionItem(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransitionItem(models.ItemStatusPending, models.ItemStatusClaimed))
}

func TestTerminalItemStatuses(t *testing.T) {
	assert.False(t, IsTerminalItem(models.ItemStatusPending))
	assert.False(t, IsTerminalItem(models.ItemStatusApproved))
	assert.True(t, IsTerminalItem(models.ItemStatusRejected))
	assert.True(t, IsTerminalItem(models.ItemStatusClaimed))
	assert.True(t, IsTerminalItem(models.ItemStatusResolved))
}

func TestClaimEdges(t *testing.T) {
	assert.True(t, CanTransitionClaim(models.ClaimStatusPending, models.ClaimStatusApproved))
	assert.True(t, CanTransitionClaim(models.ClaimStatusPending, models.ClaimStatusRejected))
	assert.False(t, CanTransitionClaim(models.ClaimStatusApproved, models.ClaimStatusRejected))
	assert.False(t, CanTransitionClaim(models.ClaimStatusRejected, models.ClaimStatusApproved))
}

func TestCheckItem(t *testing.T) {
	require.NoError(t, CheckItem(ActionApproveSubmission, models.ItemStatusPending))
	require.NoError(t, CheckItem(ActionArchive, models.ItemStatusApproved))

	err := CheckItem(ActionApproveSubmission, models.ItemStatusApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))

	err = CheckItem(ActionMarkClaimed, models.ItemStatusPending)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestCheckClaim(t *testing.T) {
	require.NoError(t, CheckClaim(ActionRejectClaim, models.ClaimStatusPending))
	err := CheckClaim(ActionApproveClaim, models.ClaimStatusRejected)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestNoteOrDefault(t *testing.T) {
	assert.Equal(t, DefaultClaimRejectNote, *NoteOrDefault(ActionRejectClaim, nil))
	assert.Equal(t, DefaultSubmissionRejectNote, *NoteOrDefault(ActionRejectSubmission, new(string)))
	assert.Nil(t, NoteOrDefault(ActionApproveSubmission, nil))

	note := "blurry photo"
	assert.Equal(t, "blurry photo", *NoteOrDefault(ActionRejectClaim, &note))
}

func TestItemEffects(t *testing.T) {
	admin := uuid.New()
	note := "duplicate report"
	item := &models.Item{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		ObjectName: "Blue umbrella",
		Status:     models.ItemStatusRejected,
		AdminNote:  &note,
		Details:    models.LostDetails{Campus: "North"},
	}

	eff := ItemEffects(ActionRejectSubmission, admin, item)
	require.Len(t, eff.Notifications, 1)
	assert.Equal(t, item.OwnerID, eff.Notifications[0].UserID)
	assert.Equal(t, models.NotificationSubmissionRejected, eff.Notifications[0].Type)
	assert.Contains(t, eff.Notifications[0].Message, "duplicate report")
	assert.Equal(t, models.ActionRejectedSubmission, eff.Audit.Action)
	assert.Equal(t, models.EntityLostItem, eff.Audit.EntityType)
	assert.Equal(t, admin, eff.Audit.AdminID)

	item.Status = models.ItemStatusResolved
	eff = ItemEffects(ActionArchive, admin, item)
	assert.Empty(t, eff.Notifications)
	assert.Equal(t, models.ActionArchivedItem, eff.Audit.Action)
}

func TestClaimEffects(t *testing.T) {
	admin := uuid.New()
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     uuid.New(),
		ItemType:   models.ItemKindFound,
		ClaimantID: uuid.New(),
		Status:     models.ClaimStatusApproved,
	}

	eff := ClaimEffects(ActionApproveClaim, admin, claim, "Keys")
	require.Len(t, eff.Notifications, 1)
	assert.Equal(t, claim.ClaimantID, eff.Notifications[0].UserID)
	assert.Equal(t, claim.ID, eff.Notifications[0].RelatedID)
	assert.Equal(t, models.NotificationClaimApproved, eff.Notifications[0].Type)
	assert.Equal(t, models.ActionApprovedClaim, eff.Audit.Action)
	assert.Equal(t, models.EntityClaim, eff.Audit.EntityType)
}
