package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/config"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token's signature is valid but its expiry has passed
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers malformed, forged, wrong-issuer and wrong-kind tokens
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService issues and verifies HS256 access and refresh tokens
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a token service from the JWT configuration
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// IssueAccessToken signs a short-lived token identifying the user
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, models.TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken signs a long-lived token that can only be exchanged for access tokens
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, models.TokenTypeRefresh, s.refreshTTL)
}

// IssuePair signs a fresh access and refresh token for the user
func (s *TokenService) IssuePair(userID string) (*models.TokenPair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseToken verifies the signature, issuer and expiry of a token and checks its kind.
// Returns ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) ParseToken(tokenString string, expected models.TokenType) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != expected {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, expected, claims.TokenType)
	}
	return claims, nil
}

func (s *TokenService) issue(userID string, tokenType models.TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := models.TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}
