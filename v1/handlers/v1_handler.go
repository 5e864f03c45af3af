package handlers

import (
	"net/http"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/shared/audit"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/middleware"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/services"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/utils"
	"github.com/go-chi/chi/v5"
)

const (
	msgRouteNotFound    = "Route not found."
	msgMethodNotAllowed = "Method not allowed."
)

// V1Handler handles all V1 API routes
type V1Handler struct {
	authService    *services.AuthService
	userService    *services.UserService
	catalogService *services.CatalogService
	bidService     *services.BidService
	adminService   *services.AdminService

	jwtAuth     *middleware.JWTAuthMiddleware
	authz       *middleware.AuthorizationMiddleware
	rateLimiter *middleware.RateLimiter
	repo        store.Repository
	auditStream auditStream
}

// Dependencies are the collaborators the V1 handler is built from.
// Revocation, Auditor, RateLimiter and Policy are optional.
type Dependencies struct {
	Repository  store.Repository
	Tokens      *services.TokenService
	Revocation  services.TokenRevocationStore
	Auditor     audit.Auditor
	RateLimiter *middleware.RateLimiter
	Policy      middleware.RoleEvaluator
}

// NewV1Handler creates a new V1 handler
func NewV1Handler(deps Dependencies) *V1Handler {
	repo := deps.Repository
	h := &V1Handler{
		authService:    services.NewAuthService(repo, deps.Tokens, deps.Revocation, deps.Auditor),
		userService:    services.NewUserService(repo, repo, deps.Auditor),
		catalogService: services.NewCatalogService(repo),
		bidService:     services.NewBidService(repo, repo, deps.Auditor),
		adminService:   services.NewAdminService(repo, repo, deps.Auditor),
		jwtAuth:        middleware.NewJWTAuthMiddleware(deps.Tokens, repo, deps.Revocation),
		authz:          middleware.NewAuthorizationMiddleware(deps.Policy),
		rateLimiter:    deps.RateLimiter,
		repo:           repo,
	}
	if s, ok := deps.Auditor.(auditStream); ok && s.IsEnabled() {
		h.auditStream = s
	}
	return h
}

// SetupV1Routes configures all V1 API routes plus the health check.
// Router-level middleware must be installed on r before calling this.
func (h *V1Handler) SetupV1Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusNotFound, msgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if h.rateLimiter != nil {
			r.Use(h.rateLimiter.Handler)
		}

		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.Post("/refresh-token", h.handleRefreshToken)
			r.With(h.jwtAuth.AuthenticateJWT).Post("/logout", h.handleLogout)
		})

		// Catalog search is public
		r.Get("/search", h.handleSearch)

		// Bid routes
		r.Route("/bid", func(r chi.Router) {
			r.Use(h.jwtAuth.AuthenticateJWT)
			r.Post("/", h.handlePlaceBid)
			r.Get("/user", h.handleListOwnBids)
			r.Get("/{id}", h.handleGetBid)
			r.Patch("/{id}", h.handleAmendBid)
		})

		// User routes
		r.Route("/user", func(r chi.Router) {
			r.Use(h.jwtAuth.AuthenticateJWT)
			r.Get("/profile", h.handleGetProfile)
			r.Patch("/profile", h.handleUpdateProfile)
			r.Get("/dashboard", h.handleDashboard)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.jwtAuth.AuthenticateJWT)
			r.Use(h.authz.RequireAdminRole())
			r.Get("/users", h.handleListUsers)
			r.Get("/user/{id}", h.handleGetUser)
			r.Get("/user/{id}/bids", h.handleGetUserBids)
			r.Get("/bids", h.handleListBids)
			r.Patch("/bid/{id}", h.handleAdjudicateBid)
		})
	})
}

// currentUser returns the identity set by the JWT middleware, responding 401 when absent
func (h *V1Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.AuthenticatedUser, bool) {
	user, err := utils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "No token provided. Please log in.")
		return nil, false
	}
	return user, true
}
