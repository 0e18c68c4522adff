package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/models/dto"
	pkgauth "github.com/yigit/campusfound/internal/pkg/auth"
)

const principalKey = "principal"

// AuthMiddleware turns bearer tokens into principals. The role is looked up on every
// request so that role changes apply immediately.
type AuthMiddleware struct {
	jwtService *pkgauth.JWTService
	authz      *auth.AuthorizationService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *pkgauth.JWTService, authz *auth.AuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		authz:      authz,
	}
}

// JWTAuth rejects requests without a valid token
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.authenticate(true)
}

// OptionalAuth resolves the principal when a token is present and continues
// anonymously otherwise. A token that is present but invalid is still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return m.authenticate(false)
}

func (m *AuthMiddleware) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			// browsers cannot set headers on websocket upgrades
			header = c.Query("token")
		}
		if header == "" {
			if required {
				abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required")
				return
			}
			c.Set(principalKey, auth.Anonymous())
			c.Next()
			return
		}

		token, err := pkgauth.ExtractBearerToken(header)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			return
		}
		userID, err := m.jwtService.ValidateAndExtractUserID(token)
		if err != nil {
			if errors.Is(err, pkgauth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		principal, err := m.authz.ResolvePrincipal(c.Request.Context(), userID)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// GetPrincipal returns the principal resolved for the request, or the anonymous one
func GetPrincipal(c *gin.Context) auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(auth.Principal); ok {
			return p
		}
	}
	return auth.Anonymous()
}

// SetPrincipal stores a principal on the request context
func SetPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(principalKey, p)
}
