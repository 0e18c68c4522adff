package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/helpers"
	"github.com/yigit/campusfound/internal/pkg/logger"
)

// ActivityLogRepository appends to and reads the activity_logs table
type ActivityLogRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends an activity log entry
func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	sql, args, err := r.sb.Insert("activity_logs").
		Columns("id", "admin_id", "action", "entity_type", "entity_id", "details", "created_at").
		Values(entry.ID, entry.AdminID, entry.Action, entry.EntityType, entry.EntityID, entry.Details, entry.CreatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create activity log SQL")
		return fmt.Errorf("failed to build create activity log query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("action", entry.Action).Msg("Error executing create activity log query")
		return fmt.Errorf("error creating activity log: %w", err)
	}
	return nil
}

// List retrieves activity logs, newest first
func (r *ActivityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]*models.ActivityLog, int64, error) {
	query := r.sb.Select("id", "admin_id", "action", "entity_type", "entity_id", "details", "created_at", "COUNT(*) OVER()").
		From("activity_logs")
	if filter.AdminID != nil {
		query = query.Where(squirrel.Eq{"admin_id": *filter.AdminID})
	}
	if filter.EntityType != "" {
		query = query.Where(squirrel.Eq{"entity_type": filter.EntityType})
	}
	if filter.EntityID != nil {
		query = query.Where(squirrel.Eq{"entity_id": *filter.EntityID})
	}
	if filter.Action != "" {
		query = query.Where(squirrel.Eq{"action": filter.Action})
	}
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	sql, args, err := query.OrderBy("created_at DESC").Limit(uint64(limit)).Offset(offset).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list activity logs SQL")
		return nil, 0, fmt.Errorf("failed to build list activity logs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list activity logs query")
		return nil, 0, fmt.Errorf("error querying activity logs: %w", err)
	}
	defer rows.Close()

	entries := []*models.ActivityLog{}
	var total int64
	for rows.Next() {
		e := &models.ActivityLog{}
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning activity log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating activity log rows: %w", err)
	}
	return entries, total, nil
}
