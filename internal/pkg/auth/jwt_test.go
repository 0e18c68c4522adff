package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/campusfound/internal/app/models"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "campusfound"})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestJWT()
	user := &models.User{ID: uuid.New(), Email: "student@uni.edu"}

	token, expiresIn, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	id, err := svc.ValidateAndExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestJWT()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateAccessToken(&models.User{ID: uuid.New(), Email: "a@uni.edu"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenFromOtherSecret(t *testing.T) {
	token, _, err := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "campusfound"}).
		GenerateAccessToken(&models.User{ID: uuid.New(), Email: "a@uni.edu"})
	require.NoError(t, err)

	_, err = newTestJWT().ValidateAndExtractUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHash(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}
