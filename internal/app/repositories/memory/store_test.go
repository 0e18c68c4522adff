package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

func newFound(status models.ItemStatus) *models.Item {
	now := time.Now().UTC()
	return &models.Item{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		ObjectName: "Calculator",
		Location:   "Library",
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
		Details:    models.FoundDetails{FoundDate: now, Email: "f@uni.edu"},
	}
}

func TestConditionalUpdateHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := New()
	item := newFound(models.ItemStatusPending)
	require.NoError(t, store.Items.Create(ctx, item))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Items.UpdateStatus(ctx, models.ItemKindFound, item.ID, models.ItemStatusPending, models.ItemStatusApproved,
				repositories.StatusChange{UpdatedAt: time.Now()})
			if err == nil {
				atomic.AddInt32(&wins, 1)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrStatusMismatch)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestUpdateStatusMissingItem(t *testing.T) {
	_, err := New().Items.UpdateStatus(context.Background(), models.ItemKindLost, uuid.New(),
		models.ItemStatusPending, models.ItemStatusApproved, repositories.StatusChange{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestReturnedItemsDoNotAliasStore(t *testing.T) {
	ctx := context.Background()
	store := New()
	item := newFound(models.ItemStatusApproved)
	require.NoError(t, store.Items.Create(ctx, item))

	got, err := store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	got.Status = models.ItemStatusResolved

	again, err := store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusApproved, again.Status)
}

func TestListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	store := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		item := newFound(models.ItemStatusApproved)
		item.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Items.Create(ctx, item))
	}
	require.NoError(t, store.Items.Create(ctx, newFound(models.ItemStatusPending)))

	items, total, err := store.Items.List(ctx, repositories.ItemFilter{
		Kind:     models.ItemKindFound,
		Statuses: []models.ItemStatus{models.ItemStatusApproved},
		Page:     1,
		Size:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))

	lost, total, err := store.Items.List(ctx, repositories.ItemFilter{Kind: models.ItemKindLost})
	require.NoError(t, err)
	assert.Empty(t, lost)
	assert.Zero(t, total)
}

func TestDeleteKeepsClaims(t *testing.T) {
	ctx := context.Background()
	store := New()
	item := newFound(models.ItemStatusApproved)
	require.NoError(t, store.Items.Create(ctx, item))

	claim := &models.Claim{ID: uuid.New(), ItemID: item.ID, ItemType: models.ItemKindFound, Status: models.ClaimStatusRejected}
	require.NoError(t, store.Claims.Create(ctx, claim))

	require.NoError(t, store.Items.Delete(ctx, models.ItemKindFound, item.ID))
	_, err := store.Items.GetByID(ctx, models.ItemKindFound, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	kept, err := store.Claims.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, kept.ItemID)
	assert.Equal(t, models.ClaimStatusRejected, kept.Status)
}

func TestPromoteFirstAdminOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := New()
	first := &models.User{ID: uuid.New(), Email: "a@uni.edu"}
	second := &models.User{ID: uuid.New(), Email: "B@uni.edu"}
	require.NoError(t, store.Users.Create(ctx, first, models.RoleUser))
	require.NoError(t, store.Users.Create(ctx, second, models.RoleUser))

	ok, err := store.Users.PromoteFirstAdmin(ctx, first.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Users.PromoteFirstAdmin(ctx, second.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Users.GetByEmail(ctx, "b@UNI.edu")
	assert.NoError(t, err)
	assert.ErrorIs(t, store.Users.Create(ctx, &models.User{ID: uuid.New(), Email: "A@uni.edu"}, models.RoleUser), apperrors.ErrEmailAlreadyExists)
}
