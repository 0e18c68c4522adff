package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/lifecycle"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/idempotency"
)

func TestSubmitApproveLostItem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	item, err := h.items.Submit(ctx, h.owner, lostInput(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPending, item.Status)
	assert.Equal(t, h.owner.ID, item.OwnerID)
	assert.Empty(t, h.notificationsFor(t, h.owner.ID), "submitting notifies nobody")

	_, err = h.items.Get(ctx, auth.Anonymous(), models.ItemKindLost, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden, "pending items are hidden from the public")

	note := "  Looks good  "
	res, err := h.items.Approve(ctx, h.admin, models.ItemKindLost, item.ID, &note)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, models.ItemStatusApproved, res.Item.Status)
	require.NotNil(t, res.Item.ApprovedBy)
	assert.Equal(t, h.admin.ID, *res.Item.ApprovedBy)
	require.NotNil(t, res.Item.AdminNote)
	assert.Equal(t, "Looks good", *res.Item.AdminNote)

	notes := h.notificationsFor(t, h.owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationSubmissionApproved, notes[0].Type)
	assert.Equal(t, item.ID, notes[0].RelatedID)
	assert.Equal(t, []uuid.UUID{h.owner.ID}, h.publisher.sent)

	logs := h.auditEntries(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionApprovedSubmission, logs[0].Action)
	assert.Equal(t, models.EntityLostItem, logs[0].EntityType)

	page, err := h.items.ListPublic(ctx, auth.Anonymous(), ItemQuery{Kind: models.ItemKindLost, Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Empty(t, page.Items[0].Details.(models.LostDetails).ContactInfo)

	detail, err := h.items.Get(ctx, h.owner, models.ItemKindLost, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@uni.edu", detail.Details.(models.LostDetails).ContactInfo)
}

func TestRejectUsesDefaultReason(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	item, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
	require.NoError(t, err)

	blank := "   "
	res, err := h.items.Reject(ctx, h.admin, models.ItemKindFound, item.ID, &blank)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusRejected, res.Item.Status)
	require.NotNil(t, res.Item.AdminNote)
	assert.Equal(t, lifecycle.DefaultSubmissionRejectNote, *res.Item.AdminNote)

	notes := h.notificationsFor(t, h.owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationSubmissionRejected, notes[0].Type)
	assert.Contains(t, notes[0].Message, lifecycle.DefaultSubmissionRejectNote)

	page, err := h.items.ListPublic(ctx, h.claimant, ItemQuery{Kind: models.ItemKindFound, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestSecondApproveIsInvalidTransitionWithoutDuplicateEffects(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	_, err := h.items.Approve(ctx, h.admin, models.ItemKindFound, item.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	assert.Len(t, h.notificationsFor(t, h.owner.ID), 1)
	assert.Len(t, h.auditEntries(t), 1)
}

func TestNonAdminCannotModerate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	item, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
	require.NoError(t, err)

	_, err = h.items.Approve(ctx, h.owner, models.ItemKindFound, item.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = h.items.Reject(ctx, auth.Anonymous(), models.ItemKindFound, item.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	stored, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPending, stored.Status)
	assert.Empty(t, h.auditEntries(t))
}

func TestArchiveOnlyFromApproved(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	pending, err := h.items.Submit(ctx, h.owner, lostInput(), nil, "")
	require.NoError(t, err)
	_, err = h.items.Archive(ctx, h.admin, models.ItemKindLost, pending.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	item := h.approvedFound(t)
	res, err := h.items.Archive(ctx, h.admin, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusResolved, res.Item.Status)
	assert.Len(t, h.notificationsFor(t, h.owner.ID), 1, "archiving adds no notification")

	logs := h.auditEntries(t)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActionArchivedItem, logs[0].Action)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.items.Submit(ctx, auth.Anonymous(), foundInput(), nil, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	in := lostInput()
	in.ObjectName = " "
	in.Details = models.LostDetails{Campus: "North"}
	_, err = h.items.Submit(ctx, h.owner, in, nil, "")
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Contains(t, custom.Details, "objectName")
	assert.Contains(t, custom.Details, "lostDate")
	assert.Contains(t, custom.Details, "contactInfo")

	in = foundInput()
	in.Details = models.FoundDetails{FoundDate: time.Now(), Email: "not-an-email"}
	_, err = h.items.Submit(ctx, h.owner, in, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	in.Details = nil
	_, err = h.items.Submit(ctx, h.owner, in, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	mine, err := h.items.ListMine(ctx, h.owner)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestSinkFailuresBecomeWarnings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	effects := NewSideEffects(failingNotifications{}, failingAudit{}, h.publisher, zerolog.Nop())
	items := NewItemService(h.store.Items, effects, h.storage, nil, zerolog.Nop())

	item, err := items.Submit(ctx, h.owner, foundInput(), nil, "")
	require.NoError(t, err)

	res, err := items.Approve(ctx, h.admin, models.ItemKindFound, item.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusApproved, res.Item.Status)
	assert.ElementsMatch(t, []string{WarningNotificationFailed, WarningAuditFailed}, res.Warnings)
	assert.Empty(t, h.publisher.sent, "failed notifications are not pushed")

	stored, err := h.store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusApproved, stored.Status)
}

func TestIdempotentSubmitReturnsSameItem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	items := NewItemService(h.store.Items, h.effects, h.storage, idempotency.NewRedisStore(rdb, time.Hour), zerolog.Nop())

	first, err := items.Submit(ctx, h.owner, foundInput(), nil, "retry-1")
	require.NoError(t, err)
	second, err := items.Submit(ctx, h.owner, foundInput(), nil, "retry-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := items.Submit(ctx, h.claimant, foundInput(), nil, "retry-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "keys are scoped per principal")

	mine, err := items.ListMine(ctx, h.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestOwnerEditAndDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	item := h.approvedFound(t)

	in := foundInput()
	in.ObjectName = "Black umbrella with strap"
	updated, err := h.items.Update(ctx, h.owner, models.ItemKindFound, item.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Black umbrella with strap", updated.ObjectName)
	assert.Equal(t, models.ItemStatusApproved, updated.Status)

	_, err = h.items.Update(ctx, h.claimant, models.ItemKindFound, item.ID, in, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = h.items.Update(ctx, h.owner, models.ItemKindLost, item.ID, in, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "kind cannot change")

	_, err = h.items.Archive(ctx, h.admin, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	_, err = h.items.Update(ctx, h.owner, models.ItemKindFound, item.ID, in, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	assert.ErrorIs(t, h.items.Delete(ctx, h.claimant, models.ItemKindFound, item.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, h.items.Delete(ctx, h.owner, models.ItemKindFound, item.ID))
	_, err = h.items.Get(ctx, h.owner, models.ItemKindFound, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
}

func TestListForReviewIsAdminOnlyAndOldestFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		h.items.now = func() time.Time { return at }
		item, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	_, err := h.items.ListForReview(ctx, h.owner, models.ItemKindFound, nil, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	page, err := h.items.ListForReview(ctx, h.admin, models.ItemKindFound, nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	for i, item := range page.Items {
		assert.Equal(t, ids[i], item.ID)
	}
	assert.Equal(t, "finder@uni.edu", page.Items[0].Details.(models.FoundDetails).Email, "admins see contact fields")
}

func TestListMineReturnsEveryReport(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	for i := 0; i < 130; i++ {
		_, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
		require.NoError(t, err)
	}
	_, err := h.items.Submit(ctx, h.owner, lostInput(), nil, "")
	require.NoError(t, err)
	_, err = h.items.Submit(ctx, h.claimant, lostInput(), nil, "")
	require.NoError(t, err)

	mine, err := h.items.ListMine(ctx, h.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 131)

	seen := map[uuid.UUID]bool{}
	for _, item := range mine {
		assert.Equal(t, h.owner.ID, item.OwnerID)
		seen[item.ID] = true
	}
	assert.Len(t, seen, 131, "pages must not overlap")
}

func TestSubmitWithoutIdempotencyWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	items := NewItemService(h.store.Items, h.effects, h.storage, idempotency.NewRedisStore(rdb, time.Hour), zerolog.Nop())
	mr.Close()

	first, err := items.Submit(ctx, h.owner, foundInput(), nil, "retry-1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPending, first.Status)

	second, err := items.Submit(ctx, h.owner, foundInput(), nil, "retry-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "without the store retries are not deduplicated")
}

func TestIdempotentSubmitInFlightConflicts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := idempotency.NewRedisStore(rdb, time.Hour)
	items := NewItemService(h.store.Items, h.effects, h.storage, store, zerolog.Nop())

	_, reserved, err := store.Reserve(ctx, h.owner.ID, "retry-2")
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = items.Submit(ctx, h.owner, foundInput(), nil, "retry-2")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
