package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testJWTConfig())

	pair, err := svc.IssuePair("user-1")
	require.NoError(t, err)

	claims, err := svc.ParseToken(pair.AccessToken, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	refresh, err := svc.ParseToken(pair.RefreshToken, models.TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestTokenService_Rejections(t *testing.T) {
	svc := NewTokenService(testJWTConfig())
	access, err := svc.IssueAccessToken("user-1")
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "another-secret"
	forged, err := NewTokenService(otherCfg).IssueAccessToken("user-1")
	require.NoError(t, err)

	otherCfg = testJWTConfig()
	otherCfg.Issuer = "someone-else"
	foreignIssuer, err := NewTokenService(otherCfg).IssueAccessToken("user-1")
	require.NoError(t, err)

	expiredSvc := NewTokenService(testJWTConfig())
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.IssueAccessToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		expected models.TokenType
		wantErr  error
	}{
		{"expired", expired, models.TokenTypeAccess, ErrTokenExpired},
		{"wrong kind", access, models.TokenTypeRefresh, ErrTokenInvalid},
		{"bad signature", forged, models.TokenTypeAccess, ErrTokenInvalid},
		{"foreign issuer", foreignIssuer, models.TokenTypeAccess, ErrTokenInvalid},
		{"malformed", "not.a.jwt", models.TokenTypeAccess, ErrTokenInvalid},
		{"empty", "", models.TokenTypeAccess, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseToken(tt.token, tt.expected)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

type mockKeyValueStore struct {
	mock.Mock
}

func (m *mockKeyValueStore) SetWithExpiry(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockKeyValueStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func TestRedisTokenRevocationStore(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("RevokeSetsKeyUntilExpiry", func(t *testing.T) {
		kv := new(mockKeyValueStore)
		kv.On("SetWithExpiry", mock.Anything, revokedTokenKeyPrefix+"jti-1", "1", 30*time.Minute).Return(nil).Once()

		s := NewRedisTokenRevocationStore(kv)
		s.now = func() time.Time { return now }

		require.NoError(t, s.Revoke(context.Background(), "jti-1", now.Add(30*time.Minute)))
		kv.AssertExpectations(t)
	})

	t.Run("ExpiredTokenIsNotStored", func(t *testing.T) {
		kv := new(mockKeyValueStore)
		s := NewRedisTokenRevocationStore(kv)
		s.now = func() time.Time { return now }

		require.NoError(t, s.Revoke(context.Background(), "jti-1", now.Add(-time.Second)))
		kv.AssertNotCalled(t, "SetWithExpiry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("IsRevoked", func(t *testing.T) {
		kv := new(mockKeyValueStore)
		kv.On("Exists", mock.Anything, revokedTokenKeyPrefix+"jti-1").Return(true, nil).Once()
		kv.On("Exists", mock.Anything, revokedTokenKeyPrefix+"jti-2").Return(false, errors.New("connection refused")).Once()

		s := NewRedisTokenRevocationStore(kv)

		revoked, err := s.IsRevoked(context.Background(), "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		_, err = s.IsRevoked(context.Background(), "jti-2")
		assert.Error(t, err)

		revoked, err = s.IsRevoked(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, revoked)
		kv.AssertExpectations(t)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, hash)
	assert.True(t, CheckPasswordHash(testPassword, hash))
	assert.False(t, CheckPasswordHash("Abc12345?", hash))
	assert.False(t, CheckPasswordHash(testPassword, "not-a-hash"))
}
