package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// ClaimRepository stores claims
type ClaimRepository struct {
	s *Store
}

// Create inserts a claim. The referenced item must exist.
func (r *ClaimRepository) Create(_ context.Context, claim *models.Claim) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[itemKey{claim.ItemType, claim.ItemID}]; !ok {
		return apperrors.ErrResourceNotFound
	}
	if _, ok := r.s.claims[claim.ID]; ok {
		return apperrors.ErrResourceAlreadyExists
	}
	r.s.claims[claim.ID] = claim.Clone()
	return nil
}

// GetByID retrieves a claim by ID
func (r *ClaimRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.claims[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return c.Clone(), nil
}

// List retrieves claims matching the filter, newest first
func (r *ClaimRepository) List(_ context.Context, filter repositories.ClaimFilter) ([]*models.Claim, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Claim
	for _, c := range r.s.claims {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.ClaimantID != nil && c.ClaimantID != *filter.ClaimantID {
			continue
		}
		if filter.ItemID != nil && c.ItemID != *filter.ItemID {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	page := helpers.PageSlice(matched, filter.Page, filter.Size)
	out := make([]*models.Claim, len(page))
	for i, c := range page {
		out[i] = c.Clone()
	}
	return out, int64(len(matched)), nil
}

// UpdateStatus adjudicates a claim that is still in status from
func (r *ClaimRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.ClaimStatus, review repositories.ClaimReview) (*models.Claim, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.claims[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	if c.Status != from {
		return nil, apperrors.ErrStatusMismatch
	}

	adminID := review.AdminID
	reviewedAt := review.ReviewedAt
	c.Status = to
	c.AdminID = &adminID
	c.ReviewedAt = &reviewedAt
	c.AdminNote = nil
	if review.AdminNote != nil {
		note := *review.AdminNote
		c.AdminNote = &note
	}
	return c.Clone(), nil
}
