package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/lifecycle"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

// racingClaims loses every conditional claim update, as if another admin got there first
type racingClaims struct{ ClaimStore }

func (racingClaims) UpdateStatus(context.Context, uuid.UUID, models.ClaimStatus, models.ClaimStatus, repositories.ClaimReview) (*models.Claim, error) {
	return nil, apperrors.ErrStatusMismatch
}

type brokenClaims struct{ ClaimStore }

func (brokenClaims) Create(context.Context, *models.Claim) error {
	return errors.New("connection reset")
}

func TestClaimFlowMarksItemClaimed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	claim, err := h.claims.SubmitClaim(ctx, h.claimant, h.claimInput(item.ID), h.evidence(t))
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	require.Len(t, claim.EvidenceURLs, 1)
	assert.Contains(t, claim.EvidenceURLs[0], "/evidence/"+h.claimant.ID.String()+"/")

	res, err := h.claims.ApproveClaim(ctx, h.admin, claim.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, models.ClaimStatusApproved, res.Claim.Status)
	require.NotNil(t, res.Claim.AdminID)
	assert.Equal(t, h.admin.ID, *res.Claim.AdminID)
	assert.NotNil(t, res.Claim.ReviewedAt)

	stored, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusClaimed, stored.Status)

	notes := h.notificationsFor(t, h.claimant.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationClaimApproved, notes[0].Type)
	assert.Contains(t, notes[0].Message, item.ObjectName)

	logs := h.auditEntries(t)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActionApprovedClaim, logs[0].Action)
	assert.Equal(t, models.EntityClaim, logs[0].EntityType)
}

func TestApprovingSecondClaimConflicts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)
	other := auth.NewPrincipal(uuid.New(), models.RoleUser)

	first, err := h.claims.FileClaim(ctx, h.claimant, h.claimInput(item.ID), []string{"http://files/a.png"})
	require.NoError(t, err)
	second, err := h.claims.FileClaim(ctx, other, h.claimInput(item.ID), []string{"http://files/b.png"})
	require.NoError(t, err)

	_, err = h.claims.ApproveClaim(ctx, h.admin, first.ID, nil)
	require.NoError(t, err)

	_, err = h.claims.ApproveClaim(ctx, h.admin, second.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := h.store.Claims.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, stored.Status, "the losing claim stays pending")
	assert.Empty(t, h.notificationsFor(t, other.ID))

	_, err = h.claims.FileClaim(ctx, other, h.claimInput(item.ID), []string{"http://files/c.png"})
	assert.ErrorIs(t, err, apperrors.ErrPrecondition, "claimed items take no new claims")

	note := "Another claimant proved ownership"
	res, err := h.claims.RejectClaim(ctx, h.admin, second.ID, &note)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusRejected, res.Claim.Status)
	require.NotNil(t, res.Claim.AdminNote)
	assert.Equal(t, note, *res.Claim.AdminNote)

	notes := h.notificationsFor(t, other.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationClaimRejected, notes[0].Type)
	assert.Contains(t, notes[0].Message, note)

	storedItem, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusClaimed, storedItem.Status, "rejecting a moot claim leaves the item claimed")
}

func TestDeletingItemKeepsItsClaims(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	approved, err := h.claims.SubmitClaim(ctx, h.claimant, h.claimInput(item.ID), h.evidence(t))
	require.NoError(t, err)
	_, err = h.claims.ApproveClaim(ctx, h.admin, approved.ID, nil)
	require.NoError(t, err)

	require.NoError(t, h.items.Delete(ctx, h.owner, models.ItemKindFound, item.ID))

	kept, err := h.claims.Get(ctx, h.claimant, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, kept.Status)
	assert.Equal(t, item.ID, kept.ItemID)

	mine, err := h.claims.ListMine(ctx, h.claimant, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)
}

func TestApproveClaimOnPendingItemLeavesBothUnchanged(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	item, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
	require.NoError(t, err)
	claim := &models.Claim{
		ID:           uuid.New(),
		ItemID:       item.ID,
		ItemType:     models.ItemKindFound,
		ClaimantID:   h.claimant.ID,
		EvidenceURLs: []string{"http://files/a.png"},
		Explanation:  "It has my initials carved into the handle",
		Status:       models.ClaimStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, h.store.Claims.Create(ctx, claim))

	_, err = h.claims.ApproveClaim(ctx, h.admin, claim.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	storedItem, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPending, storedItem.Status, "pending never jumps to claimed")
	storedClaim, err := h.store.Claims.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, storedClaim.Status)
}

func TestApproveClaimCompensatesWhenClaimUpdateLoses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	claim, err := h.claims.FileClaim(ctx, h.claimant, h.claimInput(item.ID), []string{"http://files/a.png"})
	require.NoError(t, err)

	racing := NewClaimService(racingClaims{h.store.Claims}, h.store.Items, h.effects, h.storage, zerolog.Nop())
	_, err = racing.ApproveClaim(ctx, h.admin, claim.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusApproved, stored.Status, "item returned to approved")
	assert.Empty(t, h.notificationsFor(t, h.claimant.ID))
}

func TestRejectClaimKeepsItemAvailable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	claim, err := h.claims.FileClaim(ctx, h.claimant, h.claimInput(item.ID), []string{"http://files/a.png"})
	require.NoError(t, err)

	res, err := h.claims.RejectClaim(ctx, h.admin, claim.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusRejected, res.Claim.Status)
	require.NotNil(t, res.Claim.AdminNote)
	assert.Equal(t, lifecycle.DefaultClaimRejectNote, *res.Claim.AdminNote)

	notes := h.notificationsFor(t, h.claimant.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationClaimRejected, notes[0].Type)
	assert.Contains(t, notes[0].Message, lifecycle.DefaultClaimRejectNote)

	stored, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusApproved, stored.Status)

	_, err = h.claims.RejectClaim(ctx, h.admin, claim.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	_, err = h.claims.ApproveClaim(ctx, h.admin, claim.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestFileClaimValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	in := h.claimInput(item.ID)
	in.Explanation = "It is mine"
	_, err := h.claims.SubmitClaim(ctx, h.claimant, in, h.evidence(t))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = h.claims.FileClaim(ctx, h.claimant, h.claimInput(item.ID), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "evidence is required")

	_, err = h.claims.FileClaim(ctx, auth.Anonymous(), h.claimInput(item.ID), []string{"http://files/a.png"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = h.claims.FileClaim(ctx, h.owner, h.claimInput(item.ID), []string{"http://files/a.png"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	lost, err := h.items.Submit(ctx, h.owner, lostInput(), nil, "")
	require.NoError(t, err)
	in = h.claimInput(lost.ID)
	in.ItemType = models.ItemKindLost
	_, err = h.claims.FileClaim(ctx, h.claimant, in, []string{"http://files/a.png"})
	assert.ErrorIs(t, err, apperrors.ErrPrecondition)

	pending, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
	require.NoError(t, err)
	_, err = h.claims.FileClaim(ctx, h.claimant, h.claimInput(pending.ID), []string{"http://files/a.png"})
	assert.ErrorIs(t, err, apperrors.ErrPrecondition, "pending items cannot be claimed")

	page, err := h.claims.ListForReview(ctx, h.admin, nil, nil, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestSubmitClaimRemovesEvidenceOnFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	broken := NewClaimService(brokenClaims{h.store.Claims}, h.store.Items, h.effects, h.storage, zerolog.Nop())
	_, err := broken.SubmitClaim(ctx, h.claimant, h.claimInput(item.ID), h.evidence(t))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(h.dir, "evidence", h.claimant.ID.String()))
	if err == nil {
		assert.Empty(t, entries)
	} else {
		assert.True(t, os.IsNotExist(err))
	}
}

func TestClaimReadAccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	claim, err := h.claims.FileClaim(ctx, h.claimant, h.claimInput(item.ID), []string{"http://files/a.png"})
	require.NoError(t, err)

	_, err = h.claims.Get(ctx, h.claimant, claim.ID)
	assert.NoError(t, err)
	_, err = h.claims.Get(ctx, h.admin, claim.ID)
	assert.NoError(t, err)
	_, err = h.claims.Get(ctx, h.owner, claim.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
	_, err = h.claims.Get(ctx, auth.Anonymous(), claim.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	mine, err := h.claims.ListMine(ctx, h.claimant, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, claim.ID, mine.Items[0].ID)

	_, err = h.claims.ListForReview(ctx, h.claimant, nil, nil, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	pending := models.ClaimStatusPending
	queue, err := h.claims.ListForReview(ctx, h.admin, &pending, &item.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, queue.Items, 1)
}
