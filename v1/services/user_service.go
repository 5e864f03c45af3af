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

const msgUserNotFound = "User not found."

// UserService serves a signed-in user's own profile and dashboard
type UserService struct {
	users   store.UserRepository
	bids    store.BidRepository
	auditor audit.Auditor
}

// NewUserService creates a new user service
func NewUserService(users store.UserRepository, bids store.BidRepository, auditor audit.Auditor) *UserService {
	if auditor == nil {
		auditor = audit.NoopAuditor{}
	}
	return &UserService{users: users, bids: bids, auditor: auditor}
}

// GetProfile returns the acting user's account
func (s *UserService) GetProfile(ctx context.Context, actor *models.AuthenticatedUser) (*models.User, error) {
	return s.loadUser(ctx, actor.UserID)
}

// UpdateProfile applies the allow-listed fields of the patch to the acting user
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.AuthenticatedUser, patch *models.UpdateProfileRequest) (*models.User, error) {
	if err := ValidateUpdateProfileRequest(patch); err != nil {
		return nil, err
	}

	current, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !current.Type.RequiresPlan() {
		// Plan details are dropped for patients, as at registration
		stripped := *patch
		stripped.NumberOfEmployees, stripped.PlanType = nil, nil
		if stripped.IsEmpty() {
			return current, nil
		}
		patch = &stripped
	}
	employees, plan := current.NumberOfEmployees, current.PlanType
	if patch.NumberOfEmployees != nil {
		employees = patch.NumberOfEmployees
	}
	if patch.PlanType != nil {
		plan = patch.PlanType
	}
	if err := validatePlanDetails(current.Type, employees, plan); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateUserProfile(ctx, actor.UserID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgUserNotFound)
		}
		return nil, apierrors.DatabaseError("update profile", err)
	}

	slog.Info("Profile updated", "userId", user.ID)
	monitoring.RecordBusinessEvent(monitoring.ActionProfileUpdated, monitoring.OutcomeSuccess)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventProfileUpdated, actor.UserID, string(actor.Role),
		audit.TargetUser, user.ID, map[string]interface{}{"fields": patchedFields(patch)}))
	return user, nil
}

// GetDashboard returns the acting user with all of their bids, newest first
func (s *UserService) GetDashboard(ctx context.Context, actor *models.AuthenticatedUser) (*models.DashboardResponse, error) {
	user, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	bids, err := s.bids.ListBidsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apierrors.DatabaseError("list bids", err)
	}
	return &models.DashboardResponse{User: user, Bids: bids, TotalBids: len(bids)}, nil
}

func (s *UserService) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgUserNotFound)
		}
		return nil, apierrors.DatabaseError("lookup user", err)
	}
	return user, nil
}

func patchedFields(patch *models.UpdateProfileRequest) []string {
	var fields []string
	if patch.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if patch.LastName != nil {
		fields = append(fields, "lastName")
	}
	if patch.Phone != nil {
		fields = append(fields, "phone")
	}
	if patch.ZipCode != nil {
		fields = append(fields, "zipCode")
	}
	if patch.NumberOfEmployees != nil {
		fields = append(fields, "numberOfEmployees")
	}
	if patch.PlanType != nil {
		fields = append(fields, "planType")
	}
	return fields
}
