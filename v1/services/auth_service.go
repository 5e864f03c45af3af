package services

import (
	"context"
	"errors"
	"log/slog"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/monitoring"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/shared/audit"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
)

const (
	msgEmailTaken          = "Email is already registered."
	msgInvalidCredentials  = "Invalid email or password."
	msgRefreshRequired     = "Refresh token required."
	msgInvalidRefreshToken = "Invalid refresh token."
)

// AuthService handles registration, login and the token lifecycle
type AuthService struct {
	users      store.UserRepository
	tokens     *TokenService
	revocation TokenRevocationStore
	auditor    audit.Auditor
}

// NewAuthService creates a new auth service. Nil revocation stores and auditors are replaced by no-ops.
func NewAuthService(users store.UserRepository, tokens *TokenService, revocation TokenRevocationStore, auditor audit.Auditor) *AuthService {
	if revocation == nil {
		revocation = NoopTokenRevocationStore{}
	}
	if auditor == nil {
		auditor = audit.NoopAuditor{}
	}
	return &AuthService{users: users, tokens: tokens, revocation: revocation, auditor: auditor}
}

// Register creates a user account and signs them in
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := ValidateRegisterRequest(req); err != nil {
		return nil, err
	}

	email := models.NormalizeEmail(req.Email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		monitoring.RecordBusinessEvent(monitoring.ActionUserRegistered, monitoring.OutcomeFailure)
		return nil, apierrors.ConflictError(msgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.DatabaseError("lookup user", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to secure password.", err)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  hash,
		Phone:     req.Phone,
		ZipCode:   req.ZipCode,
		Type:      req.Type,
		Role:      models.RoleUser,
	}
	if req.Type.RequiresPlan() {
		user.NumberOfEmployees = req.NumberOfEmployees
		user.PlanType = req.PlanType
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			monitoring.RecordBusinessEvent(monitoring.ActionUserRegistered, monitoring.OutcomeFailure)
			return nil, apierrors.ConflictError(msgEmailTaken)
		}
		return nil, apierrors.DatabaseError("create user", err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to issue tokens.", err)
	}

	slog.Info("User registered", "userId", user.ID, "type", user.Type)
	monitoring.RecordBusinessEvent(monitoring.ActionUserRegistered, monitoring.OutcomeSuccess)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventUserRegistered, user.ID, string(user.Role),
		audit.TargetUser, user.ID, map[string]interface{}{"type": user.Type}))

	return &models.AuthResponse{User: user, Token: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := ValidateLoginRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.loginFailed("unknown email")
		}
		return nil, apierrors.DatabaseError("lookup user", err)
	}
	if !CheckPasswordHash(req.Password, user.Password) {
		return nil, s.loginFailed("password mismatch")
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to issue tokens.", err)
	}

	slog.Info("User logged in", "userId", user.ID)
	monitoring.RecordBusinessEvent(monitoring.ActionLogin, monitoring.OutcomeSuccess)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventUserLogin, user.ID, string(user.Role), audit.TargetUser, user.ID, nil))

	return &models.AuthResponse{User: user, Token: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *AuthService) loginFailed(reason string) error {
	slog.Warn("Login failed", "reason", reason)
	monitoring.RecordBusinessEvent(monitoring.ActionLogin, monitoring.OutcomeFailure)
	return apierrors.UnauthenticatedError(msgInvalidCredentials)
}

// RefreshToken exchanges a refresh token for a new access token. The refresh token is not rotated.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	if refreshToken == "" {
		return nil, apierrors.ValidationError(msgRefreshRequired)
	}

	claims, err := s.tokens.ParseToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		slog.Warn("Refresh token rejected", "error", err)
		return nil, apierrors.UnauthenticatedError(msgInvalidRefreshToken)
	}

	revoked, err := s.revocation.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to check token revocation.", err)
	}
	if revoked {
		slog.Warn("Revoked refresh token presented", "userId", claims.UserID)
		return nil, apierrors.UnauthenticatedError(msgInvalidRefreshToken)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.UnauthenticatedError(msgInvalidRefreshToken)
		}
		return nil, apierrors.DatabaseError("lookup user", err)
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, apierrors.InternalErrorWithCause("Failed to issue tokens.", err)
	}

	monitoring.RecordBusinessEvent(monitoring.ActionTokenRefreshed, monitoring.OutcomeSuccess)
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Logout revokes the access token that authenticated the request and, when supplied,
// a refresh token belonging to the same user. Foreign or unparsable refresh tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, actor *models.AuthenticatedUser, refreshToken string) error {
	if actor.TokenID != "" && !actor.ExpiresAt.IsZero() {
		if err := s.revocation.Revoke(ctx, actor.TokenID, actor.ExpiresAt); err != nil {
			return apierrors.InternalErrorWithCause("Failed to revoke token.", err)
		}
	}

	if refreshToken != "" {
		claims, err := s.tokens.ParseToken(refreshToken, models.TokenTypeRefresh)
		switch {
		case err != nil:
			slog.Debug("Ignoring unusable refresh token on logout", "userId", actor.UserID, "error", err)
		case claims.UserID != actor.UserID:
			slog.Warn("Refresh token of another user presented on logout", "userId", actor.UserID)
		default:
			if err := revokeClaims(ctx, s.revocation, claims); err != nil {
				return apierrors.InternalErrorWithCause("Failed to revoke token.", err)
			}
		}
	}

	slog.Info("User logged out", "userId", actor.UserID)
	monitoring.RecordBusinessEvent(monitoring.ActionLogout, monitoring.OutcomeSuccess)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventUserLogout, actor.UserID, string(actor.Role), audit.TargetUser, actor.UserID, nil))
	return nil
}
