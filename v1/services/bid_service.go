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
	msgBidNotFound       = "Bid not found."
	msgBidViewForbidden  = "Not authorized to view this bid."
	msgBidAmendForbidden = "Not authorized to update this bid."
	msgBidReviewed       = "Cannot update a bid that has already been reviewed."
)

// BidService enforces the bid lifecycle for bid owners.
// The acting user is always passed explicitly; ownership is checked beside the fetch.
type BidService struct {
	bids     store.BidRepository
	listings store.ListingRepository
	auditor  audit.Auditor
}

// NewBidService creates a new bid service
func NewBidService(bids store.BidRepository, listings store.ListingRepository, auditor audit.Auditor) *BidService {
	if auditor == nil {
		auditor = audit.NoopAuditor{}
	}
	return &BidService{bids: bids, listings: listings, auditor: auditor}
}

// PlaceBid creates a pending bid that must exceed the listing's reserve
func (s *BidService) PlaceBid(ctx context.Context, actor *models.AuthenticatedUser, req *models.PlaceBidRequest) (*models.Bid, error) {
	if err := ValidatePlaceBidRequest(req); err != nil {
		return nil, err
	}

	listing, err := s.getListing(ctx, req.CPTDataID)
	if err != nil {
		return nil, err
	}
	if *req.BidAmount <= listing.ReserveAmount {
		monitoring.RecordBusinessEvent(monitoring.ActionBidPlaced, monitoring.OutcomeFailure)
		return nil, apierrors.ValidationError(reserveMessage(listing.ReserveAmount))
	}

	bid := &models.Bid{
		UserID:    actor.UserID,
		CPTDataID: listing.ID,
		BidAmount: *req.BidAmount,
		Status:    models.BidStatusPending,
	}
	if err := s.bids.CreateBid(ctx, bid); err != nil {
		return nil, apierrors.DatabaseError("create bid", err)
	}

	created, err := s.bids.GetBidByID(ctx, bid.ID)
	if err != nil {
		return nil, apierrors.DatabaseError("load bid", err)
	}

	slog.Info("Bid placed", "bidId", created.ID, "userId", actor.UserID, "cptCode", listing.CPTCode)
	monitoring.RecordBusinessEvent(monitoring.ActionBidPlaced, monitoring.OutcomeSuccess)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventBidPlaced, actor.UserID, string(actor.Role), audit.TargetBid, created.ID,
		map[string]interface{}{"cptCode": listing.CPTCode, "bidAmount": created.BidAmount}))
	return created, nil
}

// ListOwnBids returns every bid of the acting user, newest first
func (s *BidService) ListOwnBids(ctx context.Context, actor *models.AuthenticatedUser) ([]models.Bid, error) {
	bids, err := s.bids.ListBidsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apierrors.DatabaseError("list bids", err)
	}
	return bids, nil
}

// GetBid returns a bid to its owner or to an admin
func (s *BidService) GetBid(ctx context.Context, actor *models.AuthenticatedUser, bidID string) (*models.Bid, error) {
	bid, err := s.getBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if !bid.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		slog.Warn("Bid access denied", "bidId", bidID, "userId", actor.UserID)
		return nil, apierrors.ForbiddenError(msgBidViewForbidden)
	}
	return bid, nil
}

// AmendBid changes the amount of the owner's pending bid.
// The write only applies while the bid is still pending, so a concurrent
// adjudication makes it fail with InvalidState rather than overwrite the outcome.
func (s *BidService) AmendBid(ctx context.Context, actor *models.AuthenticatedUser, bidID string, req *models.AmendBidRequest) (*models.Bid, error) {
	if err := validateBidAmount(req.BidAmount); err != nil {
		return nil, err
	}

	bid, err := s.getBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if !bid.IsOwnedBy(actor.UserID) {
		slog.Warn("Bid amendment denied", "bidId", bidID, "userId", actor.UserID)
		return nil, apierrors.ForbiddenError(msgBidAmendForbidden)
	}
	if !bid.IsPending() {
		return nil, apierrors.InvalidStateError(msgBidReviewed)
	}

	listing, err := s.getListing(ctx, bid.CPTDataID)
	if err != nil {
		return nil, err
	}
	if *req.BidAmount <= listing.ReserveAmount {
		monitoring.RecordBusinessEvent(monitoring.ActionBidAmended, monitoring.OutcomeFailure)
		return nil, apierrors.ValidationError(reserveMessage(listing.ReserveAmount))
	}

	previous := bid.BidAmount
	updated, err := s.bids.AmendPendingBid(ctx, bidID, *req.BidAmount)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, apierrors.InvalidStateError(msgBidReviewed)
		case errors.Is(err, store.ErrNotFound):
			return nil, apierrors.NotFoundError(msgBidNotFound)
		}
		return nil, apierrors.DatabaseError("amend bid", err)
	}

	slog.Info("Bid amended", "bidId", bidID, "userId", actor.UserID)
	monitoring.RecordBusinessEvent(monitoring.ActionBidAmended, monitoring.OutcomeSuccess)
	s.auditor.LogEvent(ctx, audit.NewEvent(audit.EventBidAmended, actor.UserID, string(actor.Role), audit.TargetBid, bidID,
		map[string]interface{}{"previousAmount": previous, "bidAmount": updated.BidAmount}))
	return updated, nil
}

func (s *BidService) getBid(ctx context.Context, bidID string) (*models.Bid, error) {
	bid, err := s.bids.GetBidByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgBidNotFound)
		}
		return nil, apierrors.DatabaseError("lookup bid", err)
	}
	return bid, nil
}

func (s *BidService) getListing(ctx context.Context, id string) (*models.CPTListing, error) {
	listing, err := s.listings.GetListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgListingNotFound)
		}
		return nil, apierrors.DatabaseError("lookup listing", err)
	}
	return listing, nil
}
