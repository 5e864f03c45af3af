package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes short-lived access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims represents the JWT claims issued by this service
type TokenClaims struct {
	UserID    string    `json:"userId"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned to clients after registration and login
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthenticatedUser represents the authenticated user context
type AuthenticatedUser struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewAuthenticatedUser builds the request identity from a resolved user and the token that proved it
func NewAuthenticatedUser(user *User, claims *TokenClaims) *AuthenticatedUser {
	authUser := &AuthenticatedUser{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	if !authUser.Role.IsValid() {
		authUser.Role = RoleUser
	}
	if claims != nil {
		authUser.TokenID = claims.ID
		if claims.ExpiresAt != nil {
			authUser.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return authUser
}

// HasRole checks if the user has a specific role
func (u *AuthenticatedUser) HasRole(role Role) bool {
	return u.Role == role
}

// IsAdmin checks if the user has admin role
func (u *AuthenticatedUser) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// HasPermission checks if the user has a specific permission based on their role
func (u *AuthenticatedUser) HasPermission(permission Permission) bool {
	return u.Role.HasPermission(permission)
}

// IsTokenExpired checks if the user's token is expired
func (u *AuthenticatedUser) IsTokenExpired() bool {
	return !u.ExpiresAt.IsZero() && time.Now().After(u.ExpiresAt)
}
