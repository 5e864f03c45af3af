package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/middleware"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	registered := s.register(t, "Pat@Example.com")
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "pat@example.com", registered.User.Email)
	assert.Equal(t, models.RoleUser, registered.User.Role)

	t.Run("duplicate email", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
			"email": "pat@example.com", "password": testPassword, "phone": "1234567890", "zipCode": "90001", "type": "patient",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email is already registered.", env.Message)
	})

	t.Run("password hash never leaves the server", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "pat@example.com", "password": testPassword}, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("wrong password", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "pat@example.com", "password": "Wrong123!"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid email or password.", env.Message)
	})

	t.Run("refresh", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/refresh-token", map[string]string{"token": registered.RefreshToken}, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Token refreshed.", env.Message)

		var resp models.AuthResponse
		decodeData(t, env, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Empty(t, resp.RefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/refresh-token", map[string]string{"token": registered.Token}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid refresh token.", env.Message)
	})

	t.Run("logout revokes both tokens", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": registered.RefreshToken}, registered.Token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Logged out successfully.", env.Message)

		w, env = s.do(t, http.MethodGet, "/api/user/profile", nil, registered.Token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token. Please log in again.", env.Message)

		w, _ = s.do(t, http.MethodPost, "/api/auth/refresh-token", map[string]string{"token": registered.RefreshToken}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email": "broker@example.com", "password": testPassword, "phone": "1234567890", "zipCode": "90001", "type": "broker",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Number of employees is required for broker/employer.", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/register", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body.", env.Message)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, nil)
	testutil.CreateTestListing(t, s.db, "99213", "90001", 100)
	testutil.CreateTestListing(t, s.db, "99214", "10001", 120)

	w, env := s.do(t, http.MethodGet, "/api/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "At least one search parameter (cpt or zip) is required.", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/search?zip=90001&page=1&limit=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Search results retrieved.", env.Message)

	var resp models.SearchResponse
	decodeData(t, env, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "99213", resp.Results[0].CPTCode)
	assert.Equal(t, int64(1), resp.Pagination.Total)
	assert.Equal(t, 10, resp.Pagination.Limit)
}

func TestBidLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	listing := testutil.CreateTestListing(t, s.db, "99213", "90001", 100)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")
	adminToken := s.adminToken(t)

	w, env := s.do(t, http.MethodPost, "/api/bid", map[string]interface{}{"cptDataId": listing.ID, "bidAmount": 100}, owner.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bid amount must be greater than the reserve amount of $100.", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/bid", map[string]interface{}{"cptDataId": listing.ID, "bidAmount": 150}, owner.Token)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	assert.Equal(t, "Bid placed successfully.", env.Message)

	var bid models.Bid
	decodeData(t, env, &bid)
	assert.Equal(t, models.BidStatusPending, bid.Status)
	require.NotNil(t, bid.CPTData)
	assert.Equal(t, "99213", bid.CPTData.CPTCode)

	w, env = s.do(t, http.MethodGet, "/api/bid/user", nil, owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var own []models.Bid
	decodeData(t, env, &own)
	assert.Len(t, own, 1)

	w, env = s.do(t, http.MethodGet, "/api/bid/"+bid.ID, nil, other.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to view this bid.", env.Message)

	w, _ = s.do(t, http.MethodGet, "/api/bid/"+bid.ID, nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPatch, "/api/bid/"+bid.ID, map[string]interface{}{"bidAmount": 175.5}, other.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to update this bid.", env.Message)

	w, env = s.do(t, http.MethodPatch, "/api/bid/"+bid.ID, map[string]interface{}{"bidAmount": 175.5}, owner.Token)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "Bid updated.", env.Message)

	w, env = s.do(t, http.MethodPatch, "/api/admin/bid/"+bid.ID, map[string]interface{}{"status": "approved", "adminComments": "Fair price"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "Bid status updated.", env.Message)
	var adjudicated models.Bid
	decodeData(t, env, &adjudicated)
	assert.Equal(t, models.BidStatusApproved, adjudicated.Status)
	assert.Equal(t, 175.5, adjudicated.BidAmount)
	require.NotNil(t, adjudicated.AdminComments)
	assert.Equal(t, "Fair price", *adjudicated.AdminComments)

	w, env = s.do(t, http.MethodPatch, "/api/bid/"+bid.ID, map[string]interface{}{"bidAmount": 200}, owner.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot update a bid that has already been reviewed.", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/bid/"+listing.ID, nil, owner.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Bid not found.", env.Message)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.register(t, "pat@example.com")

	w, env := s.do(t, http.MethodPatch, "/api/user/profile", map[string]interface{}{
		"firstName": "Pat",
		"email":     "hijack@example.com",
		"role":      "admin",
	}, user.Token)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "Profile updated.", env.Message)

	var profile models.User
	decodeData(t, env, &profile)
	assert.Equal(t, "Pat", profile.FirstName)
	assert.Equal(t, "pat@example.com", profile.Email)
	assert.Equal(t, models.RoleUser, profile.Role)

	w, env = s.do(t, http.MethodGet, "/api/user/dashboard", nil, user.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard models.DashboardResponse
	decodeData(t, env, &dashboard)
	assert.Equal(t, 0, dashboard.TotalBids)
	assert.Equal(t, "Pat", dashboard.User.FirstName)

	w, env = s.do(t, http.MethodGet, "/api/user/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided. Please log in.", env.Message)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	listing := testutil.CreateTestListing(t, s.db, "99213", "90001", 100)
	patient := s.register(t, "pat@example.com")
	adminToken := s.adminToken(t)
	testutil.CreateTestBid(t, s.db, patient.User.ID, listing.ID, 150, models.BidStatusPending, time.Now().Add(-time.Hour))
	testutil.CreateTestBid(t, s.db, patient.User.ID, listing.ID, 160, models.BidStatusDenied, time.Now())

	w, env := s.do(t, http.MethodGet, "/api/admin/users", nil, patient.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin privileges required.", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/admin/users?type=patient", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var users models.UserListResponse
	decodeData(t, env, &users)
	require.Len(t, users.Users, 2)
	counts := map[string]int64{}
	for _, u := range users.Users {
		counts[u.Email] = u.BidCount
	}
	assert.Equal(t, int64(2), counts["pat@example.com"])

	w, env = s.do(t, http.MethodGet, "/api/admin/user/"+patient.User.ID+"/bids", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User's bids retrieved.", env.Message)
	var userBids models.UserBidsResponse
	decodeData(t, env, &userBids)
	assert.Len(t, userBids.Bids, 2)

	w, env = s.do(t, http.MethodGet, "/api/admin/user/missing", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found.", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/admin/bids?status=pending", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var bids models.BidListResponse
	decodeData(t, env, &bids)
	require.Len(t, bids.Bids, 1)
	assert.Equal(t, 150.0, bids.Bids[0].BidAmount)

	w, env = s.do(t, http.MethodGet, "/api/admin/bids?status=withdrawn", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status must be pending, approved, or denied.", env.Message)

	w, env = s.do(t, http.MethodPatch, "/api/admin/bid/"+bids.Bids[0].ID, map[string]string{"status": "pending"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status must be approved or denied.", env.Message)
}

func TestRoutingFallbacks(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodGet, "/api/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found.", env.Message)

	w, env = s.do(t, http.MethodDelete, "/api/search", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed.", env.Message)

	w, env = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestRateLimitedAPI(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(2, time.Hour))

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodGet, "/api/search?zip=90001", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, env := s.do(t, http.MethodGet, "/api/search?zip=90001", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests, please try again later.", env.Message)

	w, _ = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "health is outside the limited API")
}
