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
	"github.com/yigit/campusfound/internal/pkg/logger"
)

// UserRepository handles users and user_roles database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a user together with its initial role in one transaction
func (r *UserRepository) Create(ctx context.Context, user *models.User, role models.Role) error {
	userSQL, userArgs, err := r.sb.Insert("users").
		Columns("id", "email", "password_hash", "full_name", "created_at", "updated_at").
		Values(user.ID, strings.ToLower(user.Email), user.PasswordHash, user.FullName, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}
	roleSQL, roleArgs, err := r.sb.Insert("user_roles").
		Columns("user_id", "role", "updated_at").
		Values(user.ID, role, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create role query: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, userSQL, userArgs...); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, roleSQL, roleArgs...)
		return err
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select("id", "email", "password_hash", "full_name", "created_at", "updated_at").
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u := &models.User{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(email)})
}

// GetRole returns the role stored for the user
func (r *UserRepository) GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	sql, args, err := r.sb.Select("role").From("user_roles").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build get role query: %w", err)
	}

	var role models.Role
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error scanning role row")
		return "", fmt.Errorf("error getting role: %w", err)
	}
	return role, nil
}

// SetRole upserts the role of an existing user
func (r *UserRepository) SetRole(ctx context.Context, userID uuid.UUID, role models.Role, at time.Time) error {
	sql, args, err := r.sb.Insert("user_roles").
		Columns("user_id", "role", "updated_at").
		Values(userID, role, at).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set role query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error executing set role query")
		return fmt.Errorf("error setting role: %w", err)
	}
	return nil
}

// PromoteFirstAdmin makes the user an admin only when no admin exists yet.
// It reports whether the promotion happened.
func (r *UserRepository) PromoteFirstAdmin(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	existsSQL, existsArgs, err := r.sb.Select("1").From("user_roles").
		Where(squirrel.Eq{"role": models.RoleAdmin}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build admin exists query: %w", err)
	}
	upsertSQL, upsertArgs, err := r.sb.Insert("user_roles").
		Columns("user_id", "role", "updated_at").
		Values(userID, models.RoleAdmin, at).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build promote query: %w", err)
	}

	var promoted bool
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// serialize concurrent bootstrap attempts
		if _, err := tx.Exec(ctx, "LOCK TABLE user_roles IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return err
		}
		var adminExists bool
		if err := tx.QueryRow(ctx, existsSQL, existsArgs...).Scan(&adminExists); err != nil {
			return err
		}
		if adminExists {
			return nil
		}
		if _, err := tx.Exec(ctx, upsertSQL, upsertArgs...); err != nil {
			return err
		}
		promoted = true
		return nil
	})
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return false, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error promoting first admin")
		return false, fmt.Errorf("error promoting first admin: %w", err)
	}
	return promoted, nil
}
