package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Repository = (*GormRepository)(nil)

// GormRepository implements Repository using GORM (works with SQLite or PostgreSQL)
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository (works with SQLite or PostgreSQL)
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates the marketplace tables
func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.User{}, &models.CPTListing{}, &models.Bid{})
}

// Ping checks the underlying connection
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// CreateUser creates a new user
func (r *GormRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = models.NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id
func (r *GormRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "failed to get user")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "failed to get user by email")
	}
	return &user, nil
}

// UpdateUserProfile applies a profile patch
func (r *GormRepository) UpdateUserProfile(ctx context.Context, id string, patch *models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.ZipCode != nil {
		updates["zip_code"] = *patch.ZipCode
	}
	if patch.NumberOfEmployees != nil {
		updates["number_of_employees"] = *patch.NumberOfEmployees
	}
	if patch.PlanType != nil {
		updates["plan_type"] = string(*patch.PlanType)
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

// ListUsers retrieves users with optional filtering
func (r *GormRepository) ListUsers(ctx context.Context, filters *UserFilters) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Type != nil && *filters.Type != "" {
		query = query.Where("type = ?", string(*filters.Type))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if err := query.Omit("password").
		Order("created_at DESC").
		Limit(normalizeLimit(filters.Limit)).
		Offset(filters.Offset).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, total, nil
}

// GetListingByID retrieves a CPT listing by id
func (r *GormRepository) GetListingByID(ctx context.Context, id string) (*models.CPTListing, error) {
	var listing models.CPTListing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, notFoundOr(err, "failed to get listing")
	}
	return &listing, nil
}

// SearchListings retrieves listings matching a term and/or ZIP code
func (r *GormRepository) SearchListings(ctx context.Context, filters *ListingFilters) ([]models.CPTListing, int64, error) {
	var listings []models.CPTListing
	var total int64

	query := r.db.WithContext(ctx).Model(&models.CPTListing{})
	if filters.Term != "" {
		pattern := "%" + escapeLike(strings.ToLower(filters.Term)) + "%"
		query = query.Where(`LOWER(cpt_code) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if filters.ZipCode != "" {
		query = query.Where("zip_code = ?", filters.ZipCode)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	if err := query.Order("cpt_code ASC").
		Limit(normalizeLimit(filters.Limit)).
		Offset(filters.Offset).
		Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	if listings == nil {
		listings = []models.CPTListing{}
	}
	return listings, total, nil
}

// UpsertListings inserts listings, refreshing the catalog fields of existing CPT codes
func (r *GormRepository) UpsertListings(ctx context.Context, listings []models.CPTListing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}
	for i := range listings {
		if listings[i].ID == "" {
			listings[i].ID = uuid.NewString()
		}
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cpt_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"specialty", "description", "county", "state", "zip_code",
			"avg_charge", "min_charge", "max_charge", "reserve_amount", "updated_at",
		}),
	}).Create(&listings)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert listings: %w", result.Error)
	}
	return len(listings), nil
}

// CreateBid creates a new bid
func (r *GormRepository) CreateBid(ctx context.Context, bid *models.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(bid).Error; err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

// GetBidByID retrieves a bid with its owner and listing
func (r *GormRepository) GetBidByID(ctx context.Context, id string) (*models.Bid, error) {
	var bid models.Bid
	if err := r.withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&bid).Error; err != nil {
		return nil, notFoundOr(err, "failed to get bid")
	}
	return &bid, nil
}

// ListBidsByUser retrieves every bid of a user, newest first
func (r *GormRepository) ListBidsByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	var bids []models.Bid
	if err := r.withRelations(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bids for user: %w", err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return bids, nil
}

// ListBids retrieves bids with optional filtering
func (r *GormRepository) ListBids(ctx context.Context, filters *BidFilters) ([]models.Bid, int64, error) {
	var bids []models.Bid
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Bid{})
	if filters.Status != nil && *filters.Status != "" {
		query = query.Where("status = ?", string(*filters.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	if err := r.withRelations(query).
		Order("created_at DESC").
		Limit(normalizeLimit(filters.Limit)).
		Offset(filters.Offset).
		Find(&bids).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve bids: %w", err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return bids, total, nil
}

// CountBidsByUsers counts bids per user
func (r *GormRepository) CountBidsByUsers(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserID string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Bid{}).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count bids by user: %w", err)
	}
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

// AmendPendingBid updates the amount of a bid that has not been adjudicated
func (r *GormRepository) AmendPendingBid(ctx context.Context, id string, amount float64) (*models.Bid, error) {
	result := r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", id, string(models.BidStatusPending)).
		Updates(map[string]interface{}{
			"bid_amount": amount,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to amend bid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, r.missingOrConflict(ctx, id)
	}
	return r.GetBidByID(ctx, id)
}

// AdjudicateBid records an admin decision on a bid
func (r *GormRepository) AdjudicateBid(ctx context.Context, id string, status models.BidStatus, comments *string) (*models.Bid, error) {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if comments != nil {
		updates["admin_comments"] = *comments
	}

	result := r.db.WithContext(ctx).Model(&models.Bid{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to adjudicate bid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetBidByID(ctx, id)
}

func (r *GormRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("CPTData").Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Omit("password")
	})
}

// missingOrConflict tells apart a bid that does not exist from one whose state moved on
func (r *GormRepository) missingOrConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Bid{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check bid: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes a user term match literally inside a LIKE pattern
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
