package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

func foundItem(owner uuid.UUID, status models.ItemStatus) *models.Item {
	phone := "+90 555 000 0000"
	return &models.Item{
		ID:         uuid.New(),
		OwnerID:    owner,
		ObjectName: "Wallet",
		Status:     status,
		Details: models.FoundDetails{
			FoundDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Email:     "finder@uni.edu",
			Phone:     &phone,
		},
	}
}

func hasContact(item *models.Item) bool {
	switch d := item.Details.(type) {
	case models.LostDetails:
		return d.ContactInfo != ""
	case models.FoundDetails:
		return d.Email != "" || d.Phone != nil
	}
	return false
}

func TestVisibleProjectionGrid(t *testing.T) {
	owner := uuid.New()
	principals := map[string]Principal{
		"anonymous": Anonymous(),
		"stranger":  NewPrincipal(uuid.New(), models.RoleUser),
		"owner":     NewPrincipal(owner, models.RoleUser),
		"admin":     NewPrincipal(uuid.New(), models.RoleAdmin),
	}

	for _, status := range models.ItemStatuses {
		for name, p := range principals {
			for _, scope := range []Scope{ScopeListing, ScopeDetail} {
				item := foundItem(owner, status)
				got := VisibleProjection(p, item, scope)
				privileged := name == "owner" || name == "admin"

				switch {
				case status != models.ItemStatusApproved && !privileged:
					assert.Nil(t, got, "%s/%s/%d", status, name, scope)
				case status != models.ItemStatusApproved:
					require.NotNil(t, got)
					assert.True(t, hasContact(got), "%s/%s/%d", status, name, scope)
				case privileged && scope == ScopeDetail:
					require.NotNil(t, got)
					assert.True(t, hasContact(got))
				default:
					require.NotNil(t, got)
					assert.False(t, hasContact(got), "%s/%s/%d", status, name, scope)
				}
				assert.True(t, hasContact(item), "projection must not mutate the stored record")
			}
		}
	}
}

func TestLostItemContactStripped(t *testing.T) {
	item := &models.Item{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  models.ItemStatusApproved,
		Details: models.LostDetails{Campus: "Main", ContactInfo: "room 204"},
	}

	got := VisibleProjection(Anonymous(), item, ScopeDetail)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Details.(models.LostDetails).ContactInfo)
	assert.Equal(t, "Main", got.Details.(models.LostDetails).Campus)
}

func TestPublicProjectionHidesModeration(t *testing.T) {
	owner := uuid.New()
	admin := uuid.New()
	note := "Checked with security desk"
	item := foundItem(owner, models.ItemStatusApproved)
	item.AdminNote = &note
	item.ApprovedBy = &admin

	got := VisibleProjection(NewPrincipal(uuid.New(), models.RoleUser), item, ScopeDetail)
	require.NotNil(t, got)
	assert.Equal(t, uuid.Nil, got.OwnerID)
	assert.Nil(t, got.AdminNote)
	assert.Nil(t, got.ApprovedBy)
	assert.Equal(t, "Wallet", got.ObjectName)

	full := VisibleProjection(NewPrincipal(owner, models.RoleUser), item, ScopeDetail)
	require.NotNil(t, full)
	assert.Equal(t, owner, full.OwnerID)
	require.NotNil(t, full.AdminNote)
	assert.Equal(t, owner, item.OwnerID, "projection must not mutate the stored record")
}

func TestFilterVisible(t *testing.T) {
	owner := uuid.New()
	items := []*models.Item{
		foundItem(owner, models.ItemStatusApproved),
		foundItem(owner, models.ItemStatusPending),
		foundItem(uuid.New(), models.ItemStatusRejected),
	}

	assert.Len(t, FilterVisible(Anonymous(), items), 1)
	assert.Len(t, FilterVisible(NewPrincipal(owner, models.RoleUser), items), 2)
	assert.Len(t, FilterVisible(NewPrincipal(uuid.New(), models.RoleAdmin), items), 3)
}

type stubRoles struct {
	roles map[uuid.UUID]models.Role
	err   error
}

func (s stubRoles) GetRole(_ context.Context, userID uuid.UUID) (models.Role, error) {
	if s.err != nil {
		return "", s.err
	}
	role, ok := s.roles[userID]
	if !ok {
		return "", apperrors.ErrResourceNotFound
	}
	return role, nil
}

func TestResolvePrincipal(t *testing.T) {
	admin := uuid.New()
	svc := NewAuthorizationService(stubRoles{roles: map[uuid.UUID]models.Role{admin: models.RoleAdmin}})

	p, err := svc.ResolvePrincipal(context.Background(), admin)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	p, err = svc.ResolvePrincipal(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())
	assert.False(t, p.IsAdmin())

	_, err = NewAuthorizationService(stubRoles{err: errors.New("connection reset")}).ResolvePrincipal(context.Background(), admin)
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(Anonymous()), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, RequireAdmin(NewPrincipal(uuid.New(), models.RoleUser)), apperrors.ErrPermissionDenied)
	assert.NoError(t, RequireAdmin(NewPrincipal(uuid.New(), models.RoleAdmin)))
}
