package store

import (
	"context"
	"errors"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict is returned when a conditional update matched no row because
	// the record is no longer in the expected state
	ErrConflict = errors.New("record state changed")
)

// UserRepository persists marketplace accounts
type UserRepository interface {
	// CreateUser inserts a new user. Returns ErrDuplicateKey when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound when no user has the id
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail looks up a user by normalized email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUserProfile applies the non-nil fields of a validated patch and returns the fresh record
	UpdateUserProfile(ctx context.Context, id string, patch *models.UpdateProfileRequest) (*models.User, error)

	// ListUsers returns one page of users and the total matching count
	ListUsers(ctx context.Context, filters *UserFilters) ([]models.User, int64, error)
}

// ListingRepository persists the CPT catalog
type ListingRepository interface {
	GetListingByID(ctx context.Context, id string) (*models.CPTListing, error)

	// SearchListings returns one page of listings ordered by CPT code and the total matching count
	SearchListings(ctx context.Context, filters *ListingFilters) ([]models.CPTListing, int64, error)

	// UpsertListings inserts listings or refreshes existing ones keyed by CPT code
	UpsertListings(ctx context.Context, listings []models.CPTListing) (int, error)
}

// BidRepository persists bids. Every read joins the listing and the owner, without the owner's password hash.
type BidRepository interface {
	CreateBid(ctx context.Context, bid *models.Bid) error

	GetBidByID(ctx context.Context, id string) (*models.Bid, error)

	// ListBidsByUser returns all bids of a user, newest first
	ListBidsByUser(ctx context.Context, userID string) ([]models.Bid, error)

	// ListBids returns one page of bids, newest first, and the total matching count
	ListBids(ctx context.Context, filters *BidFilters) ([]models.Bid, int64, error)

	// CountBidsByUsers returns bid counts keyed by user id. Users without bids are absent.
	CountBidsByUsers(ctx context.Context, userIDs []string) (map[string]int64, error)

	// AmendPendingBid sets a new amount only while the bid is pending.
	// Returns ErrConflict when the bid exists but is no longer pending.
	AmendPendingBid(ctx context.Context, id string, amount float64) (*models.Bid, error)

	// AdjudicateBid sets the status and, when comments is non-nil, the admin comments
	AdjudicateBid(ctx context.Context, id string, status models.BidStatus, comments *string) (*models.Bid, error)
}

// Repository is the durable store behind every service
type Repository interface {
	UserRepository
	ListingRepository
	BidRepository

	// Ping checks the underlying connection
	Ping(ctx context.Context) error
}

// UserFilters represents query filters for listing users
type UserFilters struct {
	Type   *models.UserType
	Limit  int
	Offset int
}

// ListingFilters represents query filters for catalog search.
// Term matches CPT code or description case-insensitively; ZipCode matches exactly.
type ListingFilters struct {
	Term    string
	ZipCode string
	Limit   int
	Offset  int
}

// BidFilters represents query filters for listing bids
type BidFilters struct {
	Status *models.BidStatus
	Limit  int
	Offset int
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultLimit
	}
	if limit > models.MaxLimit {
		return models.MaxLimit
	}
	return limit
}
