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

var itemCommonColumns = []string{
	"id", "user_id", "object_name", "description", "location", "image_url",
	"status", "admin_note", "approved_by", "approved_at", "created_at", "updated_at",
}

var lostColumns = []string{"campus", "lost_date", "contact_info"}

var foundColumns = []string{"found_date", "email", "phone"}

// StatusChange carries the fields written alongside a status change. Nil fields are left untouched.
type StatusChange struct {
	AdminNote  *string
	ApprovedBy *uuid.UUID
	ApprovedAt *time.Time
	UpdatedAt  time.Time
}

// ItemRepository handles lost_items and found_items database operations
type ItemRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func tableFor(kind models.ItemKind) (string, error) {
	switch kind {
	case models.ItemKindLost:
		return "lost_items", nil
	case models.ItemKindFound:
		return "found_items", nil
	}
	return "", fmt.Errorf("unknown item kind %q", kind)
}

func columnsFor(kind models.ItemKind) []string {
	cols := append([]string{}, itemCommonColumns...)
	if kind == models.ItemKindLost {
		return append(cols, lostColumns...)
	}
	return append(cols, foundColumns...)
}

func scanItem(row pgx.Row, kind models.ItemKind, extra ...any) (*models.Item, error) {
	item := &models.Item{}
	dest := []any{
		&item.ID, &item.OwnerID, &item.ObjectName, &item.Description, &item.Location, &item.ImageURL,
		&item.Status, &item.AdminNote, &item.ApprovedBy, &item.ApprovedAt, &item.CreatedAt, &item.UpdatedAt,
	}

	switch kind {
	case models.ItemKindLost:
		var d models.LostDetails
		dest = append(dest, &d.Campus, &d.LostDate, &d.ContactInfo)
		dest = append(dest, extra...)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		item.Details = d
	case models.ItemKindFound:
		var d models.FoundDetails
		dest = append(dest, &d.FoundDate, &d.Email, &d.Phone)
		dest = append(dest, extra...)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		item.Details = d
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	return item, nil
}

func insertValues(item *models.Item) ([]any, error) {
	values := []any{
		item.ID, item.OwnerID, item.ObjectName, item.Description, item.Location, item.ImageURL,
		item.Status, item.AdminNote, item.ApprovedBy, item.ApprovedAt, item.CreatedAt, item.UpdatedAt,
	}
	switch d := item.Details.(type) {
	case models.LostDetails:
		return append(values, d.Campus, d.LostDate, d.ContactInfo), nil
	case models.FoundDetails:
		return append(values, d.FoundDate, d.Email, d.Phone), nil
	}
	return nil, fmt.Errorf("item %s has no details", item.ID)
}

// Create inserts a new item. ID and timestamps must already be set.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	kind := item.Kind()
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	values, err := insertValues(item)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Insert(table).Columns(columnsFor(kind)...).Values(values...).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create item SQL")
		return fmt.Errorf("failed to build create item query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("itemID", item.ID.String()).Msg("Error executing create item query")
		return fmt.Errorf("error creating item: %w", dberrors.Map(err))
	}
	return nil
}

// GetByID retrieves an item by kind and ID
func (r *ItemRepository) GetByID(ctx context.Context, kind models.ItemKind, id uuid.UUID) (*models.Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select(columnsFor(kind)...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get item SQL")
		return nil, fmt.Errorf("failed to build get item query: %w", err)
	}

	item, err := scanItem(r.db.QueryRow(ctx, sql, args...), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("itemID", id.String()).Msg("Error scanning item row")
		return nil, fmt.Errorf("error getting item by ID: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) listQuery(filter ItemFilter) (string, []any, error) {
	table, err := tableFor(filter.Kind)
	if err != nil {
		return "", nil, err
	}

	query := r.sb.Select(columnsFor(filter.Kind)...).Column("COUNT(*) OVER()").From(table)

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where(squirrel.Eq{"status": statuses})
	}
	if filter.OwnerID != nil {
		query = query.Where(squirrel.Eq{"user_id": *filter.OwnerID})
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"object_name": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		query = query.Where(squirrel.ILike{"location": "%" + loc + "%"})
	}
	if campus := strings.TrimSpace(filter.Campus); campus != "" && filter.Kind == models.ItemKindLost {
		query = query.Where(squirrel.Eq{"campus": campus})
	}

	if filter.OldestFirst {
		query = query.OrderBy("created_at ASC", "id ASC")
	} else {
		query = query.OrderBy("created_at DESC", "id DESC")
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	return query.Limit(uint64(limit)).Offset(offset).ToSql()
}

// List retrieves items matching the filter with the total count for pagination
func (r *ItemRepository) List(ctx context.Context, filter ItemFilter) ([]*models.Item, int64, error) {
	sql, args, err := r.listQuery(filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error building list items SQL")
		return nil, 0, fmt.Errorf("failed to build list items query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list items query")
		return nil, 0, fmt.Errorf("error querying items: %w", err)
	}
	defer rows.Close()

	items := []*models.Item{}
	var total int64
	for rows.Next() {
		item, err := scanItem(rows, filter.Kind, &total)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning item row during list")
			return nil, 0, fmt.Errorf("error scanning item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating item rows")
		return nil, 0, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, total, nil
}

func (r *ItemRepository) statusUpdateQuery(kind models.ItemKind, id uuid.UUID, from, to models.ItemStatus, change StatusChange) (string, []any, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", nil, err
	}

	set := map[string]interface{}{
		"status":     to,
		"updated_at": change.UpdatedAt,
	}
	if change.AdminNote != nil {
		set["admin_note"] = *change.AdminNote
	}
	if change.ApprovedBy != nil {
		set["approved_by"] = *change.ApprovedBy
	}
	if change.ApprovedAt != nil {
		set["approved_at"] = *change.ApprovedAt
	}

	return r.sb.Update(table).
		SetMap(set).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + strings.Join(columnsFor(kind), ", ")).
		ToSql()
}

// UpdateStatus moves an item from one status to another. The update only applies when
// the stored status still equals from; otherwise ErrStatusMismatch or ErrResourceNotFound is returned.
func (r *ItemRepository) UpdateStatus(ctx context.Context, kind models.ItemKind, id uuid.UUID, from, to models.ItemStatus, change StatusChange) (*models.Item, error) {
	sql, args, err := r.statusUpdateQuery(kind, id, from, to, change)
	if err != nil {
		logger.Error().Err(err).Msg("Error building update item status SQL")
		return nil, fmt.Errorf("failed to build update item status query: %w", err)
	}

	item, err := scanItem(r.db.QueryRow(ctx, sql, args...), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.explainMiss(ctx, kind, id)
		}
		logger.Error().Err(err).Str("itemID", id.String()).Msg("Error executing update item status query")
		return nil, fmt.Errorf("error updating item status: %w", err)
	}
	return item, nil
}

// UpdateDetails writes the owner-editable fields of an item while its status is one of allowed
func (r *ItemRepository) UpdateDetails(ctx context.Context, item *models.Item, allowed []models.ItemStatus) (*models.Item, error) {
	kind := item.Kind()
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{
		"object_name": item.ObjectName,
		"description": item.Description,
		"location":    item.Location,
		"image_url":   item.ImageURL,
		"updated_at":  item.UpdatedAt,
	}
	switch d := item.Details.(type) {
	case models.LostDetails:
		set["campus"] = d.Campus
		set["lost_date"] = d.LostDate
		set["contact_info"] = d.ContactInfo
	case models.FoundDetails:
		set["found_date"] = d.FoundDate
		set["email"] = d.Email
		set["phone"] = d.Phone
	}

	statuses := make([]string, len(allowed))
	for i, s := range allowed {
		statuses[i] = string(s)
	}

	sql, args, err := r.sb.Update(table).
		SetMap(set).
		Where(squirrel.Eq{"id": item.ID, "status": statuses}).
		Suffix("RETURNING " + strings.Join(columnsFor(kind), ", ")).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update item SQL")
		return nil, fmt.Errorf("failed to build update item query: %w", err)
	}

	updated, err := scanItem(r.db.QueryRow(ctx, sql, args...), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.explainMiss(ctx, kind, item.ID)
		}
		logger.Error().Err(err).Str("itemID", item.ID.String()).Msg("Error executing update item query")
		return nil, fmt.Errorf("error updating item: %w", err)
	}
	return updated, nil
}

// Delete removes an item. Claims filed against it are kept.
func (r *ItemRepository) Delete(ctx context.Context, kind models.ItemKind, id uuid.UUID) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete item SQL")
		return fmt.Errorf("failed to build delete item query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("itemID", id.String()).Msg("Error executing delete item query")
		return fmt.Errorf("error deleting item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// explainMiss tells a lost conditional update apart from a missing row
func (r *ItemRepository) explainMiss(ctx context.Context, kind models.ItemKind, id uuid.UUID) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	sql, args, err := r.sb.Select("1").From(table).Where(squirrel.Eq{"id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build item exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return fmt.Errorf("error checking item existence: %w", err)
	}
	if !exists {
		return apperrors.ErrResourceNotFound
	}
	return apperrors.ErrStatusMismatch
}
