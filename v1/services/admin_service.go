package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/monitoring"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/shared/audit"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
)

// AdminService serves the administrator views and bid adjudication.
// Callers must have passed the admin role check.
type AdminService struct {
	users   store.UserRepository
	bids    store.BidRepository
	auditor audit.Auditor
}

// NewAdminService creates a new admin service
func NewAdminService(users store.UserRepository, bids store.BidRepository, auditor audit.Auditor) *AdminService {
	if auditor == nil {
		auditor = audit.NoopAuditor{}
	}
	return &AdminService{users: users, bids: bids, auditor: auditor}
}

// ListAllUsers returns a page of users, each annotated with their bid count
func (s *AdminService) ListAllUsers(ctx context.Context, query *models.UserListQuery) (*models.UserListResponse, error) {
	filters := &store.UserFilters{}
	if query.Type != "" {
		userType := models.UserType(strings.ToLower(strings.TrimSpace(query.Type)))
		if !userType.IsValid() {
			return nil, apierrors.ValidationError(msgInvalidUserType)
		}
		filters.Type = &userType
	}
	query.Normalize()
	filters.Limit = query.Limit
	filters.Offset = query.Offset()

	users, total, err := s.users.ListUsers(ctx, filters)
	if err != nil {
		return nil, apierrors.DatabaseError("list users", err)
	}

	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	counts, err := s.bids.CountBidsByUsers(ctx, ids)
	if err != nil {
		return nil, apierrors.DatabaseError("count bids", err)
	}

	result := make([]models.UserWithBidCount, len(users))
	for i := range users {
		result[i] = models.UserWithBidCount{User: users[i], BidCount: counts[users[i].ID]}
	}

	return &models.UserListResponse{
		Users:      result,
		Pagination: models.NewPagination(total, query.PageQuery),
	}, nil
}

// GetUser returns any user by id
func (s *AdminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgUserNotFound)
		}
		return nil, apierrors.DatabaseError("lookup user", err)
	}
	return user, nil
}

// GetUserBids returns a user together with all of their bids, newest first
func (s *AdminService) GetUserBids(ctx context.Context, userID string) (*models.UserBidsResponse, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	bids, err := s.bids.ListBidsByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.DatabaseError("list bids", err)
	}
	return &models.UserBidsResponse{User: user, Bids: bids}, nil
}

// ListAllBids returns a page of all bids, newest first
func (s *AdminService) ListAllBids(ctx context.Context, query *models.BidListQuery) (*models.BidListResponse, error) {
	filters := &store.BidFilters{}
	if query.Status != "" {
		status := models.BidStatus(strings.ToLower(strings.TrimSpace(query.Status)))
		if !status.IsValid() {
			return nil, apierrors.ValidationError(msgInvalidStatusFilter)
		}
		filters.Status = &status
	}
	query.Normalize()
	filters.Limit = query.Limit
	filters.Offset = query.Offset()

	bids, total, err := s.bids.ListBids(ctx, filters)
	if err != nil {
		return nil, apierrors.DatabaseError("list bids", err)
	}

	return &models.BidListResponse{
		Bids:       bids,
		Pagination: models.NewPagination(total, query.PageQuery),
	}, nil
}

// AdjudicateBid approves or denies a bid. Re-adjudication is allowed;
// comments are only replaced when a non-empty value is supplied.
func (s *AdminService) AdjudicateBid(ctx context.Context, admin *models.AuthenticatedUser, bidID string, req *models.AdjudicateBidRequest) (*models.Bid, error) {
	if !req.Status.IsTerminal() {
		return nil, apierrors.ValidationError(msgInvalidStatus)
	}

	var comments *string
	if req.AdminComments != nil && strings.TrimSpace(*req.AdminComments) != "" {
		comments = req.AdminComments
	}

	bid, err := s.bids.AdjudicateBid(ctx, bidID, req.Status, comments)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgBidNotFound)
		}
		return nil, apierrors.DatabaseError("adjudicate bid", err)
	}

	slog.Info("Bid adjudicated", "bidId", bidID, "status", bid.Status, "adminId", admin.UserID)
	outcome := monitoring.OutcomeApproved
	if bid.Status == models.BidStatusDenied {
		outcome = monitoring.OutcomeDenied
	}
	monitoring.RecordBusinessEvent(monitoring.ActionBidAdjudicated, outcome)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventBidAdjudicated, admin.UserID, string(admin.Role), audit.TargetBid, bidID,
		map[string]interface{}{"status": bid.Status, "ownerId": bid.UserID}))
	return bid, nil
}
