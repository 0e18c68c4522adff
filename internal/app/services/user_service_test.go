package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/app/repositories/memory"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	pkgauth "github.com/yigit/campusfound/internal/pkg/auth"
)

func init() {
	pkgauth.BcryptCost = bcrypt.MinCost
}

func newAuthService(store *memory.Store) *AuthService {
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "campusfound"})
	return NewAuthService(store.Users, auth.NewAuthorizationService(store.Users), jwtService, zerolog.Nop())
}

func TestRegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newAuthService(store)

	user, err := svc.Register(ctx, RegisterInput{Email: " Ada@Uni.edu ", Password: "secret123", FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "ada@uni.edu", user.Email)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@uni.edu", Password: "secret123", FullName: "Ada Again"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{Email: "weak@uni.edu", Password: "short", FullName: "Weak"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Login(ctx, "ada@uni.edu", "wrong-pass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@uni.edu", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	res, err := svc.Login(ctx, "ADA@uni.edu", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleUser, res.Role)

	me, err := svc.Me(ctx, auth.NewPrincipal(user.ID, models.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	_, err = svc.Me(ctx, auth.Anonymous())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestSetRoleIsAuditedAndGuarded(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newAuthService(store)
	effects := NewSideEffects(store.Notifications, store.ActivityLogs, nil, zerolog.Nop())
	users := NewUserService(store.Users, effects, "", zerolog.Nop())

	target, err := svc.Register(ctx, RegisterInput{Email: "grace@uni.edu", Password: "secret123", FullName: "Grace Hopper"})
	require.NoError(t, err)
	admin := auth.NewPrincipal(uuid.New(), models.RoleAdmin)

	_, err = users.SetRole(ctx, auth.NewPrincipal(uuid.New(), models.RoleUser), target.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = users.SetRole(ctx, admin, admin.ID, models.RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = users.SetRole(ctx, admin, target.ID, models.Role("root"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	warnings, err := users.SetRole(ctx, admin, target.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	role, err := store.Users.GetRole(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	logs, _, err := store.ActivityLogs.List(ctx, repositories.ActivityLogFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionChangedRole, logs[0].Action)
	assert.Equal(t, models.EntityUser, logs[0].EntityType)
	assert.Equal(t, "user", logs[0].Details["from"])
}

func TestBootstrapPromotesOnlyFirstAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newAuthService(store)
	effects := NewSideEffects(store.Notifications, store.ActivityLogs, nil, zerolog.Nop())
	users := NewUserService(store.Users, effects, "let-me-in", zerolog.Nop())

	first, err := svc.Register(ctx, RegisterInput{Email: "first@uni.edu", Password: "secret123", FullName: "First"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, RegisterInput{Email: "second@uni.edu", Password: "secret123", FullName: "Second"})
	require.NoError(t, err)

	p1 := auth.NewPrincipal(first.ID, models.RoleUser)
	assert.ErrorIs(t, users.Bootstrap(ctx, p1, "guess"), apperrors.ErrPermissionDenied)
	require.NoError(t, users.Bootstrap(ctx, p1, "let-me-in"))

	role, err := store.Users.GetRole(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	err = users.Bootstrap(ctx, auth.NewPrincipal(second.ID, models.RoleUser), "let-me-in")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	disabled := NewUserService(store.Users, effects, "", zerolog.Nop())
	assert.ErrorIs(t, disabled.Bootstrap(ctx, p1, ""), apperrors.ErrPermissionDenied)
}

func TestEnsureAdminCreatesOrPromotes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	users := NewUserService(store.Users, nil, "", zerolog.Nop())

	require.NoError(t, users.EnsureAdmin(ctx, "Admin@Uni.edu", "secret123", "Office"))
	admin, err := store.Users.GetByEmail(ctx, "admin@uni.edu")
	require.NoError(t, err)
	role, err := store.Users.GetRole(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	require.NoError(t, users.EnsureAdmin(ctx, "admin@uni.edu", "secret123", "Office"), "running twice is a no-op")
}

func TestNotificationsReadState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.approvedFound(t)
	svc := NewNotificationService(h.store.Notifications)

	page, err := svc.List(ctx, h.owner, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	id := page.Items[0].ID

	assert.ErrorIs(t, svc.MarkRead(ctx, h.claimant, id), apperrors.ErrNotFoundOrForbidden)
	require.NoError(t, svc.MarkRead(ctx, h.owner, id))

	page, err = svc.List(ctx, h.owner, true, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	n, err := svc.MarkAllRead(ctx, h.owner)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = NewActivityLogService(h.store.ActivityLogs).List(ctx, h.owner, repositories.ActivityLogFilter{Page: 1, Size: 10})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
