package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/lifecycle"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/filestorage"
	"github.com/yigit/campusfound/internal/pkg/helpers"
	"github.com/yigit/campusfound/internal/pkg/idempotency"
	"github.com/yigit/campusfound/internal/pkg/metrics"
	"github.com/yigit/campusfound/internal/pkg/validation"
)

const itemNotFoundMessage = "Item not found"

var editableStatuses = []models.ItemStatus{models.ItemStatusPending, models.ItemStatusApproved}

// ItemInput holds the owner-supplied fields of a lost or found report
type ItemInput struct {
	ObjectName  string             `json:"objectName" validate:"notblank,max=200"`
	Description string             `json:"description" validate:"notblank,max=2000"`
	Location    string             `json:"location" validate:"notblank,max=200"`
	Details     models.ItemDetails `json:"-" validate:"-"`
}

// ItemQuery narrows a public listing
type ItemQuery struct {
	Kind     models.ItemKind
	Query    string
	Location string
	Campus   string
	Page     int
	Size     int
}

// ItemService implements the item lifecycle and the item read paths
type ItemService struct {
	items   ItemStore
	storage filestorage.FileStorage
	dedupe  idempotency.Store
	effects *SideEffects
	now     func() time.Time
	logger  zerolog.Logger
}

// NewItemService creates a new ItemService
func NewItemService(items ItemStore, effects *SideEffects, storage filestorage.FileStorage, dedupe idempotency.Store, logger zerolog.Logger) *ItemService {
	if dedupe == nil {
		dedupe = idempotency.NoopStore{}
	}
	return &ItemService{
		items:   items,
		storage: storage,
		dedupe:  dedupe,
		effects: effects,
		now:     time.Now,
		logger:  logger,
	}
}

func validateItemInput(in ItemInput) error {
	fields := map[string]interface{}{}
	if err := validation.Struct(in); err != nil {
		var custom *apperrors.CustomError
		if !errors.As(err, &custom) {
			return err
		}
		for k, v := range custom.Details {
			fields[k] = v
		}
	}

	switch d := in.Details.(type) {
	case models.LostDetails:
		if strings.TrimSpace(d.Campus) == "" {
			fields["campus"] = "campus is required"
		}
		if d.LostDate.IsZero() {
			fields["lostDate"] = "lostDate is required"
		}
		if strings.TrimSpace(d.ContactInfo) == "" {
			fields["contactInfo"] = "contactInfo is required"
		}
	case models.FoundDetails:
		if d.FoundDate.IsZero() {
			fields["foundDate"] = "foundDate is required"
		}
		if err := validation.Validator().Var(d.Email, "required,email"); err != nil {
			fields["email"] = "email must be a valid email address"
		}
		if d.Phone != nil && *d.Phone != "" && !validation.PhonePattern.MatchString(*d.Phone) {
			fields["phone"] = "phone must be a valid phone number"
		}
	default:
		fields["type"] = "type must be one of: lost found"
	}

	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError("Some required fields are missing or invalid").WithDetails(fields)
}

func normalizeItemInput(in ItemInput) ItemInput {
	in.ObjectName = strings.TrimSpace(in.ObjectName)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	switch d := in.Details.(type) {
	case models.LostDetails:
		d.Campus = strings.TrimSpace(d.Campus)
		d.ContactInfo = strings.TrimSpace(d.ContactInfo)
		in.Details = d
	case models.FoundDetails:
		d.Email = strings.TrimSpace(d.Email)
		if d.Phone != nil {
			phone := strings.TrimSpace(*d.Phone)
			d.Phone = &phone
			if phone == "" {
				d.Phone = nil
			}
		}
		in.Details = d
	}
	return in
}

func cleanNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func storeError(err error, notFoundMessage string) error {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NewNotFoundError(notFoundMessage)
	}
	return err
}

// Submit creates a pending item owned by the principal. A repeated idempotency key
// returns the item the first request created.
func (s *ItemService) Submit(ctx context.Context, p auth.Principal, in ItemInput, image *filestorage.Upload, idempotencyKey string) (*models.Item, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	in = normalizeItemInput(in)
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		prev, reserved, err := s.dedupe.Reserve(ctx, p.ID, idempotencyKey)
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return nil, err
		case err != nil:
			// dedupe is best-effort, the submission goes ahead without the key
			s.logger.Warn().Err(err).Str("userID", p.ID.String()).Msg("Idempotency store unavailable, submitting without key")
			idempotencyKey = ""
		case !reserved:
			s.logger.Info().Str("itemID", prev.ID.String()).Msg("Replaying idempotent item submission")
			item, err := s.items.GetByID(ctx, models.ItemKind(prev.Kind), prev.ID)
			if err != nil {
				return nil, storeError(err, itemNotFoundMessage)
			}
			return auth.VisibleProjection(p, item, auth.ScopeDetail), nil
		}
	}

	item, err := s.create(ctx, p, in, image)
	if err != nil {
		if idempotencyKey != "" {
			s.dedupe.Release(ctx, p.ID, idempotencyKey)
		}
		return nil, err
	}

	if idempotencyKey != "" {
		if err := s.dedupe.Complete(ctx, p.ID, idempotencyKey, idempotency.Result{Kind: string(item.Kind()), ID: item.ID}); err != nil {
			s.logger.Warn().Err(err).Str("itemID", item.ID.String()).Msg("Failed to record idempotency key")
		}
	}
	return item, nil
}

func (s *ItemService) create(ctx context.Context, p auth.Principal, in ItemInput, image *filestorage.Upload) (*models.Item, error) {
	now := s.now().UTC()
	item := &models.Item{
		ID:          uuid.New(),
		OwnerID:     p.ID,
		ObjectName:  in.ObjectName,
		Description: in.Description,
		Location:    in.Location,
		Status:      models.ItemStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Details:     in.Details,
	}

	if image != nil {
		url, err := s.storage.Save(ctx, p.ID, filestorage.CategoryItems, image)
		if err != nil {
			return nil, fmt.Errorf("storing item image: %w", err)
		}
		item.ImageURL = &url
	}

	if err := s.items.Create(ctx, item); err != nil {
		if item.ImageURL != nil {
			s.removeFile(ctx, *item.ImageURL)
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	metrics.Transitions.WithLabelValues("item", "submit", "ok").Inc()
	s.logger.Info().Str("itemID", item.ID.String()).Str("kind", string(item.Kind())).Msg("Item submitted")
	return item, nil
}

func (s *ItemService) removeFile(ctx context.Context, url string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Failed to remove stored file")
	}
}

// Approve publishes a pending item
func (s *ItemService) Approve(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID, note *string) (*ItemResult, error) {
	now := s.now().UTC()
	adminID := p.ID
	return s.transition(ctx, p, kind, id, lifecycle.ActionApproveSubmission, repositories.StatusChange{
		AdminNote:  cleanNote(note),
		ApprovedBy: &adminID,
		ApprovedAt: &now,
		UpdatedAt:  now,
	})
}

// Reject declines a pending item. An empty note is replaced by a generic reason.
func (s *ItemService) Reject(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID, note *string) (*ItemResult, error) {
	return s.transition(ctx, p, kind, id, lifecycle.ActionRejectSubmission, repositories.StatusChange{
		AdminNote: lifecycle.NoteOrDefault(lifecycle.ActionRejectSubmission, cleanNote(note)),
		UpdatedAt: s.now().UTC(),
	})
}

// Archive resolves an approved item without a claim
func (s *ItemService) Archive(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID) (*ItemResult, error) {
	return s.transition(ctx, p, kind, id, lifecycle.ActionArchive, repositories.StatusChange{
		UpdatedAt: s.now().UTC(),
	})
}

func (s *ItemService) transition(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID, action lifecycle.Action, change repositories.StatusChange) (*ItemResult, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, kind, id)
	if err != nil {
		return nil, storeError(err, itemNotFoundMessage)
	}
	if err := lifecycle.CheckItem(action, item.Status); err != nil {
		metrics.Transitions.WithLabelValues("item", string(action), "rejected").Inc()
		return nil, err
	}

	from, to, _ := lifecycle.ItemTransition(action)
	updated, err := s.items.UpdateStatus(ctx, kind, id, from, to, change)
	if err != nil {
		if errors.Is(err, apperrors.ErrStatusMismatch) {
			metrics.Transitions.WithLabelValues("item", string(action), "lost_race").Inc()
			return nil, lifecycle.ItemTransitionError(action)
		}
		return nil, storeError(err, itemNotFoundMessage)
	}

	metrics.Transitions.WithLabelValues("item", string(action), "ok").Inc()
	s.logger.Info().
		Str("itemID", id.String()).
		Str("action", string(action)).
		Str("adminID", p.ID.String()).
		Msg("Item status changed")

	warnings := s.effects.emit(ctx, lifecycle.ItemEffects(action, p.ID, updated))
	return &ItemResult{Item: updated, Warnings: warnings}, nil
}

// markClaimed moves an approved found item to claimed. It is only reachable through claim approval.
func markClaimed(ctx context.Context, items ItemStore, kind models.ItemKind, id uuid.UUID, now time.Time) (*models.Item, error) {
	from, to, _ := lifecycle.ItemTransition(lifecycle.ActionMarkClaimed)
	return items.UpdateStatus(ctx, kind, id, from, to, repositories.StatusChange{UpdatedAt: now})
}

// unmarkClaimed undoes markClaimed when the claim update that followed it failed
func unmarkClaimed(ctx context.Context, items ItemStore, kind models.ItemKind, id uuid.UUID, now time.Time) error {
	from, to, _ := lifecycle.ItemTransition(lifecycle.ActionMarkClaimed)
	_, err := items.UpdateStatus(ctx, kind, id, to, from, repositories.StatusChange{UpdatedAt: now})
	return err
}

// Get returns one item as the principal is allowed to see it
func (s *ItemService) Get(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, kind, id)
	if err != nil {
		return nil, storeError(err, itemNotFoundMessage)
	}
	projected := auth.VisibleProjection(p, item, auth.ScopeDetail)
	if projected == nil {
		return nil, apperrors.NewNotFoundError(itemNotFoundMessage)
	}
	return projected, nil
}

// ListPublic returns approved items of one kind without contact fields
func (s *ItemService) ListPublic(ctx context.Context, p auth.Principal, q ItemQuery) (*Page[*models.Item], error) {
	items, total, err := s.items.List(ctx, repositories.ItemFilter{
		Kind:     q.Kind,
		Statuses: []models.ItemStatus{models.ItemStatusApproved},
		Query:    q.Query,
		Location: q.Location,
		Campus:   q.Campus,
		Page:     q.Page,
		Size:     q.Size,
	})
	if err != nil {
		return nil, err
	}
	return &Page[*models.Item]{Items: auth.FilterVisible(p, items), Total: total, Page: q.Page, Size: q.Size}, nil
}

// ListMine returns every item the principal reported, in all statuses
func (s *ItemService) ListMine(ctx context.Context, p auth.Principal) ([]*models.Item, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	owner := p.ID
	out := []*models.Item{}
	for _, kind := range []models.ItemKind{models.ItemKindLost, models.ItemKindFound} {
		for page := 1; ; page++ {
			items, _, err := s.items.List(ctx, repositories.ItemFilter{
				Kind:    kind,
				OwnerID: &owner,
				Page:    page,
				Size:    helpers.MaxPageSize,
			})
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				out = append(out, auth.VisibleProjection(p, item, auth.ScopeDetail))
			}
			if len(items) < helpers.MaxPageSize {
				break
			}
		}
	}
	return out, nil
}

// ListForReview returns the moderation queue, oldest first. Statuses default to pending.
func (s *ItemService) ListForReview(ctx context.Context, p auth.Principal, kind models.ItemKind, statuses []models.ItemStatus, page, size int) (*Page[*models.Item], error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		statuses = []models.ItemStatus{models.ItemStatusPending}
	}
	items, total, err := s.items.List(ctx, repositories.ItemFilter{
		Kind:        kind,
		Statuses:    statuses,
		Page:        page,
		Size:        size,
		OldestFirst: true,
	})
	if err != nil {
		return nil, err
	}
	return &Page[*models.Item]{Items: items, Total: total, Page: page, Size: size}, nil
}

// Update lets the owner edit the descriptive fields of a pending or approved item
func (s *ItemService) Update(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID, in ItemInput, image *filestorage.Upload) (*models.Item, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	in = normalizeItemInput(in)
	if err := validateItemInput(in); err != nil {
		return nil, err
	}
	if in.Details.Kind() != kind {
		return nil, apperrors.NewValidationError("The item type cannot be changed")
	}

	item, err := s.items.GetByID(ctx, kind, id)
	if err != nil {
		return nil, storeError(err, itemNotFoundMessage)
	}
	if !p.Owns(item.OwnerID) {
		if auth.VisibleProjection(p, item, auth.ScopeDetail) == nil {
			return nil, apperrors.NewNotFoundError(itemNotFoundMessage)
		}
		return nil, apperrors.NewForbiddenError("Only the owner can edit this item")
	}
	if item.Status != models.ItemStatusPending && item.Status != models.ItemStatusApproved {
		return nil, apperrors.NewInvalidTransitionError("Only pending or approved items can be edited")
	}

	edited := item.Clone()
	edited.ObjectName = in.ObjectName
	edited.Description = in.Description
	edited.Location = in.Location
	edited.Details = in.Details
	edited.UpdatedAt = s.now().UTC()

	oldImage := item.ImageURL
	if image != nil {
		url, err := s.storage.Save(ctx, p.ID, filestorage.CategoryItems, image)
		if err != nil {
			return nil, fmt.Errorf("storing item image: %w", err)
		}
		edited.ImageURL = &url
	}

	updated, err := s.items.UpdateDetails(ctx, edited, editableStatuses)
	if err != nil {
		if image != nil {
			s.removeFile(ctx, *edited.ImageURL)
		}
		if errors.Is(err, apperrors.ErrStatusMismatch) {
			return nil, apperrors.NewInvalidTransitionError("Only pending or approved items can be edited")
		}
		return nil, storeError(err, itemNotFoundMessage)
	}
	if image != nil && oldImage != nil {
		s.removeFile(ctx, *oldImage)
	}
	return updated, nil
}

// Delete hard-deletes an item. The owner and admins may delete in any status.
func (s *ItemService) Delete(ctx context.Context, p auth.Principal, kind models.ItemKind, id uuid.UUID) error {
	if err := auth.RequireAuthenticated(p); err != nil {
		return err
	}
	item, err := s.items.GetByID(ctx, kind, id)
	if err != nil {
		return storeError(err, itemNotFoundMessage)
	}
	if !auth.CanModifyItem(p, item) {
		if auth.VisibleProjection(p, item, auth.ScopeDetail) == nil {
			return apperrors.NewNotFoundError(itemNotFoundMessage)
		}
		return apperrors.NewForbiddenError("Only the owner can delete this item")
	}

	if err := s.items.Delete(ctx, kind, id); err != nil {
		return storeError(err, itemNotFoundMessage)
	}
	if item.ImageURL != nil {
		s.removeFile(ctx, *item.ImageURL)
	}
	s.logger.Info().Str("itemID", id.String()).Str("principalID", p.ID.String()).Msg("Item deleted")
	return nil
}
