package services

import (
	"testing"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateRegisterRequest(t *testing.T) {
	employees := 50
	zero := 0
	ppo := models.PlanTypePPO
	bogus := models.PlanType("Gold")

	tests := []struct {
		name    string
		mutate  func(r *models.RegisterRequest)
		wantMsg string
	}{
		{"valid patient", func(r *models.RegisterRequest) {}, ""},
		{"names are optional", func(r *models.RegisterRequest) { r.FirstName, r.LastName = "", "" }, ""},
		{"missing email", func(r *models.RegisterRequest) { r.Email = " " }, msgRequiredFields},
		{"missing type", func(r *models.RegisterRequest) { r.Type = "" }, msgRequiredFields},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "a@x" }, msgInvalidEmail},
		{"short password", func(r *models.RegisterRequest) { r.Password = "Ab1!" }, msgWeakPassword},
		{"no special", func(r *models.RegisterRequest) { r.Password = "Abc123456" }, msgWeakPassword},
		{"disallowed character", func(r *models.RegisterRequest) { r.Password = "Abc 12345!" }, msgWeakPassword},
		{"phone too short", func(r *models.RegisterRequest) { r.Phone = "12345" }, msgInvalidPhone},
		{"zip letters", func(r *models.RegisterRequest) { r.ZipCode = "9000A" }, msgInvalidZip},
		{"unknown type", func(r *models.RegisterRequest) { r.Type = "provider" }, msgInvalidUserType},
		{"broker without employees", func(r *models.RegisterRequest) {
			r.Type, r.PlanType = models.UserTypeBroker, &ppo
		}, msgEmployeesRequired},
		{"employer with zero employees", func(r *models.RegisterRequest) {
			r.Type, r.NumberOfEmployees, r.PlanType = models.UserTypeEmployer, &zero, &ppo
		}, msgEmployeesRequired},
		{"broker with bad plan", func(r *models.RegisterRequest) {
			r.Type, r.NumberOfEmployees, r.PlanType = models.UserTypeBroker, &employees, &bogus
		}, msgPlanRequired},
		{"valid employer", func(r *models.RegisterRequest) {
			r.Type, r.NumberOfEmployees, r.PlanType = models.UserTypeEmployer, &employees, &ppo
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := patientRegistration("a@x.com")
			tt.mutate(req)
			err := ValidateRegisterRequest(req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			requireAPIError(t, err, apierrors.ErrorTypeValidation, tt.wantMsg)
		})
	}
}

func TestValidateUpdateProfileRequest(t *testing.T) {
	str := func(s string) *string { return &s }
	negative := -3
	bogus := models.PlanType("Gold")

	tests := []struct {
		name    string
		req     models.UpdateProfileRequest
		wantMsg string
	}{
		{"empty patch", models.UpdateProfileRequest{}, msgEmptyProfileUpdate},
		{"name only", models.UpdateProfileRequest{FirstName: str(" Ada ")}, ""},
		{"bad phone", models.UpdateProfileRequest{Phone: str("555")}, msgInvalidPhone},
		{"bad zip", models.UpdateProfileRequest{ZipCode: str("123456")}, msgInvalidZip},
		{"negative employees", models.UpdateProfileRequest{NumberOfEmployees: &negative}, msgInvalidEmployees},
		{"bad plan", models.UpdateProfileRequest{PlanType: &bogus}, msgInvalidPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdateProfileRequest(&tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			requireAPIError(t, err, apierrors.ErrorTypeValidation, tt.wantMsg)
		})
	}
}

func TestValidatePlaceBidRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.PlaceBidRequest
		wantMsg string
	}{
		{"valid", models.PlaceBidRequest{CPTDataID: "l-1", BidAmount: amount(10)}, ""},
		{"missing listing", models.PlaceBidRequest{BidAmount: amount(10)}, msgBidFieldsRequired},
		{"missing amount", models.PlaceBidRequest{CPTDataID: "l-1"}, msgBidFieldsRequired},
		{"zero amount", models.PlaceBidRequest{CPTDataID: "l-1", BidAmount: amount(0)}, msgBidFieldsRequired},
		{"negative amount", models.PlaceBidRequest{CPTDataID: "l-1", BidAmount: amount(-5)}, msgBidAmountPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlaceBidRequest(&tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			requireAPIError(t, err, apierrors.ErrorTypeValidation, tt.wantMsg)
		})
	}
}

func TestReserveMessage(t *testing.T) {
	assert.Equal(t, "Bid amount must be greater than the reserve amount of $100.", reserveMessage(100))
	assert.Equal(t, "Bid amount must be greater than the reserve amount of $75.5.", reserveMessage(75.5))
}
