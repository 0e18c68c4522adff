package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/helpers"
	"github.com/yigit/campusfound/internal/pkg/logger"
)

// NotificationRepository handles notifications database operations
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns("id", "user_id", "title", "message", "type", "related_id", "created_at", "read_at").
		Values(n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedID, n.CreatedAt, n.ReadAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create notification SQL")
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userID", n.UserID.String()).Msg("Error executing create notification query")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// List retrieves a user's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, filter NotificationFilter) ([]*models.Notification, int64, error) {
	query := r.sb.Select("id", "user_id", "title", "message", "type", "related_id", "created_at", "read_at", "COUNT(*) OVER()").
		From("notifications").
		Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.UnreadOnly {
		query = query.Where(squirrel.Eq{"read_at": nil})
	}
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	sql, args, err := query.OrderBy("created_at DESC").Limit(uint64(limit)).Offset(offset).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list notifications SQL")
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list notifications query")
		return nil, 0, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	var total int64
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.CreatedAt, &n.ReadAt, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning notification row: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return out, total, nil
}

// MarkRead marks one of the user's notifications as read. Already-read notifications keep their read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("notifications").
		Set("read_at", squirrel.Expr("COALESCE(read_at, ?)", at)).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building mark notification read SQL")
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("notificationID", id.String()).Msg("Error executing mark notification read query")
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	sql, args, err := r.sb.Update("notifications").
		Set("read_at", at).
		Where(squirrel.Eq{"user_id": userID, "read_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building mark all read SQL")
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error executing mark all read query")
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
