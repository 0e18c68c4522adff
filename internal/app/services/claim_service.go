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
	"github.com/yigit/campusfound/internal/pkg/metrics"
	"github.com/yigit/campusfound/internal/pkg/validation"
)

const claimNotFoundMessage = "Claim not found"

// MaxEvidenceFiles caps the number of files attached to one claim
const MaxEvidenceFiles = 5

// ClaimInput holds what a claimant submits
type ClaimInput struct {
	ItemID      uuid.UUID       `json:"itemId" validate:"required"`
	ItemType    models.ItemKind `json:"itemType" validate:"required"`
	Explanation string          `json:"explanation" validate:"minrunes=20,max=2000"`
}

// ClaimService implements the claim lifecycle
type ClaimService struct {
	claims  ClaimStore
	items   ItemStore
	storage filestorage.FileStorage
	effects *SideEffects
	now     func() time.Time
	logger  zerolog.Logger
}

// NewClaimService creates a new ClaimService
func NewClaimService(claims ClaimStore, items ItemStore, effects *SideEffects, storage filestorage.FileStorage, logger zerolog.Logger) *ClaimService {
	return &ClaimService{
		claims:  claims,
		items:   items,
		storage: storage,
		effects: effects,
		now:     time.Now,
		logger:  logger,
	}
}

func validateClaimInput(in ClaimInput, evidenceCount int) error {
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
	if evidenceCount == 0 {
		fields["files"] = "at least one evidence file is required"
	}
	if evidenceCount > MaxEvidenceFiles {
		fields["files"] = fmt.Sprintf("at most %d evidence files are allowed", MaxEvidenceFiles)
	}
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError("The claim is incomplete").WithDetails(fields)
}

// checkClaimable loads the item and verifies a claim may be filed against it.
// Any status other than approved is a precondition failure, whoever the caller is.
func (s *ClaimService) checkClaimable(ctx context.Context, p auth.Principal, in ClaimInput) (*models.Item, error) {
	if in.ItemType != models.ItemKindFound {
		return nil, apperrors.NewPreconditionError("Only found items can be claimed")
	}
	item, err := s.items.GetByID(ctx, in.ItemType, in.ItemID)
	if err != nil {
		return nil, storeError(err, itemNotFoundMessage)
	}
	if item.Status != models.ItemStatusApproved {
		return nil, apperrors.NewPreconditionError("This item can no longer be claimed")
	}
	if p.Owns(item.OwnerID) {
		return nil, apperrors.NewForbiddenError("You cannot claim an item you reported")
	}
	return item, nil
}

// FileClaim records a pending claim whose evidence is already stored
func (s *ClaimService) FileClaim(ctx context.Context, p auth.Principal, in ClaimInput, evidenceURLs []string) (*models.Claim, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	in.Explanation = strings.TrimSpace(in.Explanation)
	if err := validateClaimInput(in, len(evidenceURLs)); err != nil {
		return nil, err
	}
	if _, err := s.checkClaimable(ctx, p, in); err != nil {
		return nil, err
	}

	claim := &models.Claim{
		ID:           uuid.New(),
		ItemID:       in.ItemID,
		ItemType:     in.ItemType,
		ClaimantID:   p.ID,
		EvidenceURLs: append([]string(nil), evidenceURLs...),
		Explanation:  in.Explanation,
		Status:       models.ClaimStatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			// the item was deleted after the precondition check
			return nil, apperrors.NewPreconditionError("This item can no longer be claimed")
		}
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	metrics.Transitions.WithLabelValues("claim", "file", "ok").Inc()
	s.logger.Info().
		Str("claimID", claim.ID.String()).
		Str("itemID", claim.ItemID.String()).
		Msg("Claim filed")
	return claim, nil
}

// SubmitClaim stores the validated evidence under the claimant's path and files the claim.
// Stored files are removed again when the claim cannot be created.
func (s *ClaimService) SubmitClaim(ctx context.Context, p auth.Principal, in ClaimInput, evidence []*filestorage.Upload) (*models.Claim, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	in.Explanation = strings.TrimSpace(in.Explanation)
	if err := validateClaimInput(in, len(evidence)); err != nil {
		return nil, err
	}
	if _, err := s.checkClaimable(ctx, p, in); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(evidence))
	for _, upload := range evidence {
		url, err := s.storage.Save(ctx, p.ID, filestorage.CategoryEvidence, upload)
		if err != nil {
			s.removeFiles(ctx, urls)
			return nil, fmt.Errorf("storing evidence: %w", err)
		}
		urls = append(urls, url)
	}

	claim, err := s.FileClaim(ctx, p, in, urls)
	if err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}
	return claim, nil
}

func (s *ClaimService) removeFiles(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.storage.Delete(ctx, url); err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("Failed to remove evidence file")
		}
	}
}

// ApproveClaim accepts a pending claim. The item is marked claimed first; if it is no
// longer approved the claim stays pending and a ConflictError is returned.
func (s *ClaimService) ApproveClaim(ctx context.Context, p auth.Principal, claimID uuid.UUID, note *string) (*ClaimResult, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, storeError(err, claimNotFoundMessage)
	}
	if err := lifecycle.CheckClaim(lifecycle.ActionApproveClaim, claim.Status); err != nil {
		metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionApproveClaim), "rejected").Inc()
		return nil, err
	}

	now := s.now().UTC()
	item, err := markClaimed(ctx, s.items, claim.ItemType, claim.ItemID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrStatusMismatch) || errors.Is(err, apperrors.ErrResourceNotFound) {
			metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionApproveClaim), "conflict").Inc()
			return nil, apperrors.NewConflictError("This item is no longer available to be claimed")
		}
		return nil, fmt.Errorf("marking item claimed: %w", err)
	}

	from, to, _ := lifecycle.ClaimTransition(lifecycle.ActionApproveClaim)
	updated, err := s.claims.UpdateStatus(ctx, claimID, from, to, repositories.ClaimReview{
		AdminID:    p.ID,
		AdminNote:  cleanNote(note),
		ReviewedAt: now,
	})
	if err != nil {
		s.compensate(ctx, claim, now)
		if errors.Is(err, apperrors.ErrStatusMismatch) || errors.Is(err, apperrors.ErrResourceNotFound) {
			metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionApproveClaim), "lost_race").Inc()
			return nil, apperrors.NewConflictError("The claim was reviewed by someone else")
		}
		return nil, fmt.Errorf("approving claim: %w", err)
	}

	metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionApproveClaim), "ok").Inc()
	s.logger.Info().
		Str("claimID", claimID.String()).
		Str("itemID", claim.ItemID.String()).
		Str("adminID", p.ID.String()).
		Msg("Claim approved")

	warnings := s.effects.emit(ctx, lifecycle.ClaimEffects(lifecycle.ActionApproveClaim, p.ID, updated, item.ObjectName))
	return &ClaimResult{Claim: updated, Warnings: warnings}, nil
}

// compensate returns the item to approved after the claim update lost a race
func (s *ClaimService) compensate(ctx context.Context, claim *models.Claim, now time.Time) {
	if err := unmarkClaimed(ctx, s.items, claim.ItemType, claim.ItemID, now); err != nil {
		metrics.Compensations.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).
			Str("claimID", claim.ID.String()).
			Str("itemID", claim.ItemID.String()).
			Msg("Failed to return item to approved after claim update failed")
		return
	}
	metrics.Compensations.WithLabelValues("ok").Inc()
	s.logger.Warn().
		Str("claimID", claim.ID.String()).
		Str("itemID", claim.ItemID.String()).
		Msg("Returned item to approved after claim update failed")
}

// RejectClaim declines a pending claim. The item is not touched.
func (s *ClaimService) RejectClaim(ctx context.Context, p auth.Principal, claimID uuid.UUID, note *string) (*ClaimResult, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, storeError(err, claimNotFoundMessage)
	}
	if err := lifecycle.CheckClaim(lifecycle.ActionRejectClaim, claim.Status); err != nil {
		metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionRejectClaim), "rejected").Inc()
		return nil, err
	}

	from, to, _ := lifecycle.ClaimTransition(lifecycle.ActionRejectClaim)
	updated, err := s.claims.UpdateStatus(ctx, claimID, from, to, repositories.ClaimReview{
		AdminID:    p.ID,
		AdminNote:  lifecycle.NoteOrDefault(lifecycle.ActionRejectClaim, cleanNote(note)),
		ReviewedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrStatusMismatch) {
			metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionRejectClaim), "lost_race").Inc()
			return nil, lifecycle.ClaimTransitionError(lifecycle.ActionRejectClaim)
		}
		return nil, storeError(err, claimNotFoundMessage)
	}

	metrics.Transitions.WithLabelValues("claim", string(lifecycle.ActionRejectClaim), "ok").Inc()
	s.logger.Info().Str("claimID", claimID.String()).Str("adminID", p.ID.String()).Msg("Claim rejected")

	objectName := "the item"
	if item, err := s.items.GetByID(ctx, claim.ItemType, claim.ItemID); err == nil {
		objectName = item.ObjectName
	}
	warnings := s.effects.emit(ctx, lifecycle.ClaimEffects(lifecycle.ActionRejectClaim, p.ID, updated, objectName))
	return &ClaimResult{Claim: updated, Warnings: warnings}, nil
}

// Get returns a claim to its claimant or an admin
func (s *ClaimService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Claim, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, claimNotFoundMessage)
	}
	if !auth.CanReadClaim(p, claim) {
		return nil, apperrors.NewNotFoundError(claimNotFoundMessage)
	}
	return claim, nil
}

// ListMine returns the principal's claims, newest first
func (s *ClaimService) ListMine(ctx context.Context, p auth.Principal, page, size int) (*Page[*models.Claim], error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	claimant := p.ID
	claims, total, err := s.claims.List(ctx, repositories.ClaimFilter{ClaimantID: &claimant, Page: page, Size: size})
	if err != nil {
		return nil, err
	}
	return &Page[*models.Claim]{Items: claims, Total: total, Page: page, Size: size}, nil
}

// ListForReview returns claims for admins, optionally narrowed by status and item
func (s *ClaimService) ListForReview(ctx context.Context, p auth.Principal, status *models.ClaimStatus, itemID *uuid.UUID, page, size int) (*Page[*models.Claim], error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	claims, total, err := s.claims.List(ctx, repositories.ClaimFilter{Status: status, ItemID: itemID, Page: page, Size: size})
	if err != nil {
		return nil, err
	}
	return &Page[*models.Claim]{Items: claims, Total: total, Page: page, Size: size}, nil
}
