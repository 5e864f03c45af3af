package testutil

import (
	"testing"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTestUser inserts a patient account with the given email and role
func CreateTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.NewString(),
		Email:    models.NormalizeEmail(email),
		Password: "not-a-real-hash",
		Phone:    "5551234567",
		ZipCode:  "90001",
		Type:     models.UserTypePatient,
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestListing inserts a CPT listing with the given code, ZIP code and reserve
func CreateTestListing(t *testing.T, db *gorm.DB, cptCode, zipCode string, reserve float64) *models.CPTListing {
	t.Helper()

	listing := &models.CPTListing{
		ID:            uuid.NewString(),
		Specialty:     "Cardiology",
		CPTCode:       cptCode,
		Description:   "Procedure " + cptCode,
		County:        "Los Angeles",
		State:         "CA",
		ZipCode:       zipCode,
		AvgCharge:     reserve * 2,
		MinCharge:     reserve,
		MaxCharge:     reserve * 4,
		ReserveAmount: reserve,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}
	return listing
}

// CreateTestBid inserts a bid in the given status, created at the given time
func CreateTestBid(t *testing.T, db *gorm.DB, userID, listingID string, amount float64, status models.BidStatus, createdAt time.Time) *models.Bid {
	t.Helper()

	bid := &models.Bid{
		ID:        uuid.NewString(),
		UserID:    userID,
		CPTDataID: listingID,
		BidAmount: amount,
		Status:    status,
	}
	bid.CreatedAt = createdAt
	if err := db.Omit("User", "CPTData").Create(bid).Error; err != nil {
		t.Fatalf("Failed to create test bid: %v", err)
	}
	return bid
}
