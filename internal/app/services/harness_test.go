package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/app/repositories/memory"
	"github.com/yigit/campusfound/internal/pkg/filestorage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var errSinkDown = errors.New("sink unavailable")

type failingNotifications struct{ NotificationStore }

func (failingNotifications) Create(context.Context, *models.Notification) error { return errSinkDown }

type failingAudit struct{ ActivityLogStore }

func (failingAudit) Create(context.Context, *models.ActivityLog) error { return errSinkDown }

type recordingPublisher struct{ sent []uuid.UUID }

func (r *recordingPublisher) Publish(userID uuid.UUID, _ *models.Notification) {
	r.sent = append(r.sent, userID)
}

type harness struct {
	store     *memory.Store
	dir       string
	storage   *filestorage.LocalStorage
	publisher *recordingPublisher
	effects   *SideEffects
	items     *ItemService
	claims    *ClaimService
	owner     auth.Principal
	claimant  auth.Principal
	admin     auth.Principal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	store := memory.New()
	pub := &recordingPublisher{}
	effects := NewSideEffects(store.Notifications, store.ActivityLogs, pub, zerolog.Nop())
	return &harness{
		store:     store,
		dir:       dir,
		storage:   storage,
		publisher: pub,
		effects:   effects,
		items:     NewItemService(store.Items, effects, storage, nil, zerolog.Nop()),
		claims:    NewClaimService(store.Claims, store.Items, effects, storage, zerolog.Nop()),
		owner:     auth.NewPrincipal(uuid.New(), models.RoleUser),
		claimant:  auth.NewPrincipal(uuid.New(), models.RoleUser),
		admin:     auth.NewPrincipal(uuid.New(), models.RoleAdmin),
	}
}

func foundInput() ItemInput {
	phone := "+90 555 123 4567"
	return ItemInput{
		ObjectName:  "Black umbrella",
		Description: "Folding umbrella with a wooden handle",
		Location:    "Library, 2nd floor",
		Details: models.FoundDetails{
			FoundDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Email:     "finder@uni.edu",
			Phone:     &phone,
		},
	}
}

func lostInput() ItemInput {
	return ItemInput{
		ObjectName:  "Student ID card",
		Description: "Blue lanyard attached",
		Location:    "Cafeteria",
		Details: models.LostDetails{
			Campus:      "North",
			LostDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			ContactInfo: "owner@uni.edu",
		},
	}
}

// approvedFound submits a found item as the harness owner and approves it
func (h *harness) approvedFound(t *testing.T) *models.Item {
	t.Helper()
	ctx := context.Background()
	item, err := h.items.Submit(ctx, h.owner, foundInput(), nil, "")
	require.NoError(t, err)
	res, err := h.items.Approve(ctx, h.admin, models.ItemKindFound, item.ID, nil)
	require.NoError(t, err)
	return res.Item
}

func (h *harness) claimInput(itemID uuid.UUID) ClaimInput {
	return ClaimInput{
		ItemID:      itemID,
		ItemType:    models.ItemKindFound,
		Explanation: "It has my initials carved into the handle",
	}
}

func (h *harness) evidence(t *testing.T) []*filestorage.Upload {
	t.Helper()
	up, err := filestorage.NewUpload("photo.png", bytes.NewReader(pngHeader), filestorage.EvidenceTypes, filestorage.MaxUploadSize)
	require.NoError(t, err)
	return []*filestorage.Upload{up}
}

func (h *harness) notificationsFor(t *testing.T, userID uuid.UUID) []*models.Notification {
	t.Helper()
	list, _, err := h.store.Notifications.List(context.Background(), repositories.NotificationFilter{UserID: userID, Page: 1, Size: 100})
	require.NoError(t, err)
	return list
}

func (h *harness) auditEntries(t *testing.T) []*models.ActivityLog {
	t.Helper()
	list, _, err := h.store.ActivityLogs.List(context.Background(), repositories.ActivityLogFilter{Page: 1, Size: 100})
	require.NoError(t, err)
	return list
}
