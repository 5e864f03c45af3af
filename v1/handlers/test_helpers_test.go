package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/config"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/middleware"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/policy"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/services"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Abc12345!"

// envelope mirrors utils.Response with the payload left raw
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (s *memoryRevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}

type testServer struct {
	router *chi.Mux
	db     *gorm.DB
	tokens *services.TokenService
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()

	db := testutil.SetupSQLiteTestDB(t)
	tokens := services.NewTokenService(config.JWTConfig{
		Secret:     "handler-secret",
		Issuer:     "cpt-bid-marketplace-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})

	rolePolicy, err := policy.NewRoleEvaluator(context.Background())
	require.NoError(t, err)

	h := NewV1Handler(Dependencies{
		Repository:  store.NewGormRepository(db),
		Tokens:      tokens,
		Revocation:  &memoryRevocationStore{revoked: make(map[string]time.Time)},
		RateLimiter: limiter,
		Policy:      rolePolicy,
	})

	r := chi.NewRouter()
	h.SetupV1Routes(r)
	return &testServer{router: r, db: db, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// register signs up a patient and returns the issued tokens
func (s *testServer) register(t *testing.T, email string) models.AuthResponse {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    email,
		"password": testPassword,
		"phone":    "1234567890",
		"zipCode":  "90001",
		"type":     "patient",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, env.Message)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

// adminToken creates an admin account and signs an access token for it
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	admin := testutil.CreateTestUser(t, s.db, "admin@example.com", models.RoleAdmin)
	token, err := s.tokens.IssueAccessToken(admin.ID)
	require.NoError(t, err)
	return token
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
