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
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	pkgauth "github.com/yigit/campusfound/internal/pkg/auth"
	"github.com/yigit/campusfound/internal/pkg/validation"
)

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"password"`
	FullName string `json:"fullName" validate:"notblank,min=2,max=100"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	User        *models.User
	Role        models.Role
	AccessToken string
	ExpiresIn   int
}

// AuthService handles authentication operations
type AuthService struct {
	users      UserStore
	authz      *auth.AuthorizationService
	jwtService *pkgauth.JWTService
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, authz *auth.AuthorizationService, jwtService *pkgauth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		authz:      authz,
		jwtService: jwtService,
		now:        time.Now,
		logger:     logger,
	}
}

// Register creates a local account with the user role
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user, models.RoleUser); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, &apperrors.CustomError{Err: apperrors.ErrEmailAlreadyExists, Message: "An account with this email already exists"}
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !pkgauth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn().Str("userID", user.ID.String()).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	role, err := s.authz.RoleOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Role: role, AccessToken: token, ExpiresIn: expiresIn}, nil
}

// Me returns the account of the principal
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
