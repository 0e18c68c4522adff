package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// ItemRepository stores lost and found items
type ItemRepository struct {
	s *Store
}

// Create inserts a new item
func (r *ItemRepository) Create(_ context.Context, item *models.Item) error {
	if item.Details == nil {
		return fmt.Errorf("item %s has no details", item.ID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := itemKey{item.Kind(), item.ID}
	if _, ok := r.s.items[key]; ok {
		return apperrors.ErrResourceAlreadyExists
	}
	r.s.items[key] = item.Clone()
	return nil
}

// GetByID retrieves an item by kind and ID
func (r *ItemRepository) GetByID(_ context.Context, kind models.ItemKind, id uuid.UUID) (*models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.items[itemKey{kind, id}]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return item.Clone(), nil
}

func matchesItem(item *models.Item, f repositories.ItemFilter) bool {
	if item.Kind() != f.Kind {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if item.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.OwnerID != nil && item.OwnerID != *f.OwnerID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(item.ObjectName), q) && !strings.Contains(strings.ToLower(item.Description), q) {
			return false
		}
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" && !strings.Contains(strings.ToLower(item.Location), loc) {
		return false
	}
	if campus := strings.TrimSpace(f.Campus); campus != "" {
		if d, ok := item.Details.(models.LostDetails); ok && d.Campus != campus {
			return false
		}
	}
	return true
}

// List retrieves items matching the filter with the total count
func (r *ItemRepository) List(_ context.Context, filter repositories.ItemFilter) ([]*models.Item, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Item
	for _, item := range r.s.items {
		if matchesItem(item, filter) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if filter.OldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if filter.OldestFirst {
			return a.ID.String() < b.ID.String()
		}
		return a.ID.String() > b.ID.String()
	})

	page := helpers.PageSlice(matched, filter.Page, filter.Size)
	out := make([]*models.Item, len(page))
	for i, item := range page {
		out[i] = item.Clone()
	}
	return out, int64(len(matched)), nil
}

// UpdateStatus moves an item from one status to another if it is still in from
func (r *ItemRepository) UpdateStatus(_ context.Context, kind models.ItemKind, id uuid.UUID, from, to models.ItemStatus, change repositories.StatusChange) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[itemKey{kind, id}]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	if item.Status != from {
		return nil, apperrors.ErrStatusMismatch
	}

	item.Status = to
	item.UpdatedAt = change.UpdatedAt
	if change.AdminNote != nil {
		note := *change.AdminNote
		item.AdminNote = &note
	}
	if change.ApprovedBy != nil {
		by := *change.ApprovedBy
		item.ApprovedBy = &by
	}
	if change.ApprovedAt != nil {
		at := *change.ApprovedAt
		item.ApprovedAt = &at
	}
	return item.Clone(), nil
}

// UpdateDetails writes owner-editable fields while the item status is one of allowed
func (r *ItemRepository) UpdateDetails(_ context.Context, item *models.Item, allowed []models.ItemStatus) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.items[itemKey{item.Kind(), item.ID}]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	permitted := false
	for _, s := range allowed {
		if stored.Status == s {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, apperrors.ErrStatusMismatch
	}

	updated := item.Clone()
	updated.OwnerID = stored.OwnerID
	updated.Status = stored.Status
	updated.AdminNote = stored.AdminNote
	updated.ApprovedBy = stored.ApprovedBy
	updated.ApprovedAt = stored.ApprovedAt
	updated.CreatedAt = stored.CreatedAt
	r.s.items[itemKey{item.Kind(), item.ID}] = updated
	return updated.Clone(), nil
}

// Delete removes an item. Claims filed against it are kept.
func (r *ItemRepository) Delete(_ context.Context, kind models.ItemKind, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := itemKey{kind, id}
	if _, ok := r.s.items[key]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(r.s.items, key)
	return nil
}
