package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
)

const (
	msgAdminRequired      = "Access denied. Admin privileges required."
	msgInsufficientAccess = "Access denied. Insufficient privileges."
	msgPolicyFailed       = "Failed to evaluate access policy."
)

// RoleEvaluator decides whether an authenticated user satisfies a required role
type RoleEvaluator interface {
	AllowRole(ctx context.Context, user *models.AuthenticatedUser, required models.Role) (bool, error)
}

// AuthorizationMiddleware provides role-based access control.
// It must run after JWTAuthMiddleware; resource ownership is checked by the services.
type AuthorizationMiddleware struct {
	policy RoleEvaluator
}

// NewAuthorizationMiddleware creates a new authorization middleware.
// A nil policy falls back to an exact role comparison.
func NewAuthorizationMiddleware(policy RoleEvaluator) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{policy: policy}
}

func (a *AuthorizationMiddleware) allow(ctx context.Context, user *models.AuthenticatedUser, required models.Role) (bool, error) {
	if a.policy == nil {
		return user.HasRole(required), nil
	}
	return a.policy.AllowRole(ctx, user, required)
}

// RequireRole returns a middleware that requires a specific role
func (a *AuthorizationMiddleware) RequireRole(requiredRole models.Role) func(http.Handler) http.Handler {
	message := msgInsufficientAccess
	if requiredRole == models.RoleAdmin {
		message = msgAdminRequired
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := utils.GetAuthenticatedUser(r.Context())
			if err != nil {
				slog.Warn("Role check without authenticated user", "path", r.URL.Path, "method", r.Method)
				utils.RespondWithError(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			allowed, err := a.allow(r.Context(), user, requiredRole)
			if err != nil {
				slog.Error("Role policy evaluation failed", "userId", user.UserID, "path", r.URL.Path, "error", err)
				utils.RespondWithError(w, http.StatusInternalServerError, msgPolicyFailed)
				return
			}

			if !allowed {
				slog.Warn("Role requirement not met",
					"userId", user.UserID,
					"role", user.Role,
					"required_role", requiredRole,
					"path", r.URL.Path,
					"method", r.Method)
				utils.RespondWithError(w, http.StatusForbidden, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminRole is a convenience middleware that requires admin role
func (a *AuthorizationMiddleware) RequireAdminRole() func(http.Handler) http.Handler {
	return a.RequireRole(models.RoleAdmin)
}
