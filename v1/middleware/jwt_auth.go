package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/services"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
)

const (
	msgNoToken      = "No token provided. Please log in."
	msgTokenExpired = "Token expired. Please log in again."
	msgTokenInvalid = "Invalid token. Please log in again."
	msgTokenNoUser  = "User not found. Token invalid."
)

// TokenVerifier verifies bearer tokens
type TokenVerifier interface {
	ParseToken(token string, expected models.TokenType) (*models.TokenClaims, error)
}

// UserLookup resolves the account a token was issued for
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// JWTAuthMiddleware provides JWT authentication functionality
type JWTAuthMiddleware struct {
	tokens     TokenVerifier
	users      UserLookup
	revocation services.TokenRevocationStore
}

// NewJWTAuthMiddleware creates a new JWT authentication middleware. A nil revocation store disables revocation checks.
func NewJWTAuthMiddleware(tokens TokenVerifier, users UserLookup, revocation services.TokenRevocationStore) *JWTAuthMiddleware {
	if revocation == nil {
		revocation = services.NoopTokenRevocationStore{}
	}
	return &JWTAuthMiddleware{tokens: tokens, users: users, revocation: revocation}
}

// AuthenticateJWT validates the bearer access token, resolves its user and
// stores the resulting identity in the request context
func (j *JWTAuthMiddleware) AuthenticateJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := j.authenticate(r)
		if err != nil {
			if apiErr := apierrors.GetAPIError(err); apiErr != nil && apiErr.IsClientError() {
				slog.Warn("Authentication failed",
					"path", r.URL.Path,
					"method", r.Method,
					"ip", getClientIP(r),
					"reason", apiErr.Type)
			}
			utils.RespondWithAPIError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.SetAuthenticatedUser(r.Context(), user)))
	})
}

func (j *JWTAuthMiddleware) authenticate(r *http.Request) (*models.AuthenticatedUser, error) {
	token, err := utils.ExtractBearerToken(r)
	if err != nil {
		return nil, apierrors.UnauthenticatedError(msgNoToken)
	}

	claims, err := j.tokens.ParseToken(token, models.TokenTypeAccess)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return nil, apierrors.TokenExpiredError(msgTokenExpired)
		}
		return nil, apierrors.TokenInvalidError(msgTokenInvalid)
	}

	revoked, err := j.revocation.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to check token revocation.", err)
	}
	if revoked {
		return nil, apierrors.TokenInvalidError(msgTokenInvalid)
	}

	user, err := j.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.TokenInvalidError(msgTokenNoUser)
		}
		return nil, apierrors.DatabaseError("lookup user", err)
	}

	return models.NewAuthenticatedUser(user, claims), nil
}
