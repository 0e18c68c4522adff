package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/dberrors"
	"github.com/yigit/campusfound/internal/pkg/helpers"
	"github.com/yigit/campusfound/internal/pkg/logger"
)

var claimColumns = []string{
	"id", "item_id", "item_type", "claimant_id", "evidence_urls", "explanation",
	"status", "admin_id", "admin_note", "created_at", "reviewed_at",
}

// ClaimReview carries the admin fields written when a claim is adjudicated
type ClaimReview struct {
	AdminID    uuid.UUID
	AdminNote  *string
	ReviewedAt time.Time
}

// ClaimRepository handles claims database operations
type ClaimRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanClaim(row pgx.Row, extra ...any) (*models.Claim, error) {
	c := &models.Claim{}
	dest := append([]any{
		&c.ID, &c.ItemID, &c.ItemType, &c.ClaimantID, &c.EvidenceURLs, &c.Explanation,
		&c.Status, &c.AdminID, &c.AdminNote, &c.CreatedAt, &c.ReviewedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	sql, args, err := r.sb.Insert("claims").
		Columns(claimColumns...).
		Values(claim.ID, claim.ItemID, claim.ItemType, claim.ClaimantID, claim.EvidenceURLs, claim.Explanation,
			claim.Status, claim.AdminID, claim.AdminNote, claim.CreatedAt, claim.ReviewedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create claim SQL")
		return fmt.Errorf("failed to build create claim query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("claimID", claim.ID.String()).Msg("Error executing create claim query")
		return fmt.Errorf("error creating claim: %w", dberrors.Map(err))
	}
	return nil
}

// GetByID retrieves a claim by ID
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	sql, args, err := r.sb.Select(claimColumns...).From("claims").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get claim SQL")
		return nil, fmt.Errorf("failed to build get claim query: %w", err)
	}

	claim, err := scanClaim(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("claimID", id.String()).Msg("Error scanning claim row")
		return nil, fmt.Errorf("error getting claim by ID: %w", err)
	}
	return claim, nil
}

func (r *ClaimRepository) listQuery(filter ClaimFilter) (string, []any, error) {
	query := r.sb.Select(claimColumns...).Column("COUNT(*) OVER()").From("claims")
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ClaimantID != nil {
		query = query.Where(squirrel.Eq{"claimant_id": *filter.ClaimantID})
	}
	if filter.ItemID != nil {
		query = query.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	return query.OrderBy("created_at DESC", "id DESC").Limit(uint64(limit)).Offset(offset).ToSql()
}

// List retrieves claims matching the filter with the total count
func (r *ClaimRepository) List(ctx context.Context, filter ClaimFilter) ([]*models.Claim, int64, error) {
	sql, args, err := r.listQuery(filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error building list claims SQL")
		return nil, 0, fmt.Errorf("failed to build list claims query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list claims query")
		return nil, 0, fmt.Errorf("error querying claims: %w", err)
	}
	defer rows.Close()

	claims := []*models.Claim{}
	var total int64
	for rows.Next() {
		claim, err := scanClaim(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning claim row: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating claim rows: %w", err)
	}
	return claims, total, nil
}

func (r *ClaimRepository) statusUpdateQuery(id uuid.UUID, from, to models.ClaimStatus, review ClaimReview) (string, []any, error) {
	return r.sb.Update("claims").
		SetMap(map[string]interface{}{
			"status":      to,
			"admin_id":    review.AdminID,
			"admin_note":  review.AdminNote,
			"reviewed_at": review.ReviewedAt,
		}).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + strings.Join(claimColumns, ", ")).
		ToSql()
}

// UpdateStatus adjudicates a claim that is still in status from
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ClaimStatus, review ClaimReview) (*models.Claim, error) {
	sql, args, err := r.statusUpdateQuery(id, from, to, review)
	if err != nil {
		logger.Error().Err(err).Msg("Error building update claim status SQL")
		return nil, fmt.Errorf("failed to build update claim status query: %w", err)
	}

	claim, err := scanClaim(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Error().Err(err).Str("claimID", id.String()).Msg("Error executing update claim status query")
			return nil, fmt.Errorf("error updating claim status: %w", err)
		}
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.ErrStatusMismatch
	}
	return claim, nil
}
