package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/config"
	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/shared/audit"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Abc12345!"

// mockAuditor records audit events through testify's mock
type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) LogEvent(ctx context.Context, event *audit.Event) {
	m.Called(ctx, event)
}

func (m *mockAuditor) IsEnabled() bool {
	return true
}

func newMockAuditor() *mockAuditor {
	a := new(mockAuditor)
	a.On("LogEvent", mock.Anything, mock.Anything).Return().Maybe()
	return a
}

// eventTypes lists the event types logged so far, in order
func (m *mockAuditor) eventTypes() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method == "LogEvent" {
			types = append(types, call.Arguments.Get(1).(*audit.Event).EventType)
		}
	}
	return types
}

// memoryRevocationStore is an in-process TokenRevocationStore for tests
type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryRevocationStore() *memoryRevocationStore {
	return &memoryRevocationStore{revoked: make(map[string]time.Time)}
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

type testEnv struct {
	db         *gorm.DB
	repo       *store.GormRepository
	tokens     *TokenService
	revocation *memoryRevocationStore
	auditor    *mockAuditor

	auth    *AuthService
	users   *UserService
	catalog *CatalogService
	bids    *BidService
	admin   *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupSQLiteTestDB(t)
	repo := store.NewGormRepository(db)
	tokens := NewTokenService(testJWTConfig())
	revocation := newMemoryRevocationStore()
	auditor := newMockAuditor()

	return &testEnv{
		db:         db,
		repo:       repo,
		tokens:     tokens,
		revocation: revocation,
		auditor:    auditor,
		auth:       NewAuthService(repo, tokens, revocation, auditor),
		users:      NewUserService(repo, repo, auditor),
		catalog:    NewCatalogService(repo),
		bids:       NewBidService(repo, repo, auditor),
		admin:      NewAdminService(repo, repo, auditor),
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "cpt-bid-marketplace-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func actorFor(user *models.User) *models.AuthenticatedUser {
	return models.NewAuthenticatedUser(user, nil)
}

func patientRegistration(email string) *models.RegisterRequest {
	return &models.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Phone:    "1234567890",
		ZipCode:  "90001",
		Type:     models.UserTypePatient,
	}
}

func amount(v float64) *float64 {
	return &v
}

func requireAPIError(t *testing.T, err error, errorType apierrors.ErrorType, message string) {
	t.Helper()
	require.Error(t, err)
	apiErr := apierrors.GetAPIError(err)
	require.NotNil(t, apiErr, "expected APIError, got %v", err)
	require.Equal(t, errorType, apiErr.Type)
	if message != "" {
		require.Equal(t, message, apiErr.Message)
	}
}
