package jwt

import (
	"testing"
	"time"

	"jobscout/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService() *HMACService {
	return NewHMACService(config.JWTConfig{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessExpiresIn:  15 * time.Minute,
		RefreshExpiresIn: 7 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestService()
	userID := uuid.New()

	token, err := s.GenerateAccessToken(userID, "jane@example.com")
	require.NoError(t, err)

	claims, err := s.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = s.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.ValidateRefreshToken(token)
	require.NoError(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	s := newTestService()
	userID := uuid.New()

	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	token, err := s.GenerateAccessToken(userID, "")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestGarbageTokenRejected(t *testing.T) {
	s := newTestService()
	_, err := s.ValidateAccessToken("not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
