package utils

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
)

// AuthContextKey is the key used to store authentication context in request context
type AuthContextKey string

const AuthContextKeyUser AuthContextKey = "authenticated_user"

var (
	ErrMissingBearerToken  = errors.New("authorization header is missing or not a bearer token")
	ErrNoAuthenticatedUser = errors.New("no authenticated user found in context")
)

// ExtractBearerToken extracts the token from an "Authorization: Bearer <token>" header
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ErrMissingBearerToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", ErrMissingBearerToken
	}
	return token, nil
}

// GetAuthenticatedUser retrieves the authenticated user from request context
func GetAuthenticatedUser(ctx context.Context) (*models.AuthenticatedUser, error) {
	user, ok := ctx.Value(AuthContextKeyUser).(*models.AuthenticatedUser)
	if !ok || user == nil {
		return nil, ErrNoAuthenticatedUser
	}
	return user, nil
}

// SetAuthenticatedUser sets the authenticated user in request context
func SetAuthenticatedUser(ctx context.Context, user *models.AuthenticatedUser) context.Context {
	return context.WithValue(ctx, AuthContextKeyUser, user)
}
