package services

import (
	"strconv"
	"strings"
	"unicode"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
)

// Validation messages returned to API clients
const (
	msgRequiredFields      = "All required fields must be provided."
	msgInvalidEmail        = "Invalid email format."
	msgWeakPassword        = "Password must be at least 8 characters and include uppercase, lowercase, number, and special character."
	msgInvalidPhone        = "Phone number must be exactly 10 digits."
	msgInvalidZip          = "ZIP code must be exactly 5 digits."
	msgInvalidUserType     = "User type must be patient, broker, or employer."
	msgEmployeesRequired   = "Number of employees is required for broker/employer."
	msgPlanRequired        = "Valid plan type is required for broker/employer."
	msgInvalidPlan         = "Plan type must be PPO, HMO, EPO, HDHP, or Custom."
	msgInvalidEmployees    = "Number of employees must be a positive number."
	msgNameTooLong         = "Name must be at most 255 characters."
	msgEmptyProfileUpdate  = "No updatable profile fields provided."
	msgCredentialsRequired = "Email and password are required."
	msgBidFieldsRequired   = "Bid amount and CPT data ID are required."
	msgBidAmountPositive   = "Bid amount must be a positive number."
	msgSearchParamRequired = "At least one search parameter (cpt or zip) is required."
	msgInvalidStatus       = "Status must be approved or denied."
	msgInvalidStatusFilter = "Status must be pending, approved, or denied."
)

// ValidateRegisterRequest checks a registration payload and trims its string fields in place
func ValidateRegisterRequest(req *models.RegisterRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.ZipCode = strings.TrimSpace(req.ZipCode)

	if req.Email == "" || req.Password == "" || req.Phone == "" || req.ZipCode == "" || req.Type == "" {
		return apierrors.ValidationError(msgRequiredFields)
	}
	if len(req.FirstName) > models.MaxNameLength || len(req.LastName) > models.MaxNameLength {
		return apierrors.ValidationError(msgNameTooLong)
	}
	if !models.EmailPattern.MatchString(req.Email) {
		return apierrors.ValidationError(msgInvalidEmail)
	}
	if !IsStrongPassword(req.Password) {
		return apierrors.ValidationError(msgWeakPassword)
	}
	if !models.PhonePattern.MatchString(req.Phone) {
		return apierrors.ValidationError(msgInvalidPhone)
	}
	if !models.ZipCodePattern.MatchString(req.ZipCode) {
		return apierrors.ValidationError(msgInvalidZip)
	}
	if !req.Type.IsValid() {
		return apierrors.ValidationError(msgInvalidUserType)
	}
	return validatePlanDetails(req.Type, req.NumberOfEmployees, req.PlanType)
}

// ValidateLoginRequest checks that both credentials are present
func ValidateLoginRequest(req *models.LoginRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return apierrors.ValidationError(msgCredentialsRequired)
	}
	return nil
}

// ValidateUpdateProfileRequest validates each supplied field of a profile patch
func ValidateUpdateProfileRequest(req *models.UpdateProfileRequest) error {
	if req.IsEmpty() {
		return apierrors.ValidationError(msgEmptyProfileUpdate)
	}
	for _, name := range []*string{req.FirstName, req.LastName} {
		if name == nil {
			continue
		}
		*name = strings.TrimSpace(*name)
		if len(*name) > models.MaxNameLength {
			return apierrors.ValidationError(msgNameTooLong)
		}
	}
	if req.Phone != nil {
		*req.Phone = strings.TrimSpace(*req.Phone)
		if !models.PhonePattern.MatchString(*req.Phone) {
			return apierrors.ValidationError(msgInvalidPhone)
		}
	}
	if req.ZipCode != nil {
		*req.ZipCode = strings.TrimSpace(*req.ZipCode)
		if !models.ZipCodePattern.MatchString(*req.ZipCode) {
			return apierrors.ValidationError(msgInvalidZip)
		}
	}
	if req.NumberOfEmployees != nil && *req.NumberOfEmployees <= 0 {
		return apierrors.ValidationError(msgInvalidEmployees)
	}
	if req.PlanType != nil && !req.PlanType.IsValid() {
		return apierrors.ValidationError(msgInvalidPlan)
	}
	return nil
}

// ValidatePlaceBidRequest checks that the listing and a positive amount are present
func ValidatePlaceBidRequest(req *models.PlaceBidRequest) error {
	req.CPTDataID = strings.TrimSpace(req.CPTDataID)
	if req.CPTDataID == "" || req.BidAmount == nil || *req.BidAmount == 0 {
		return apierrors.ValidationError(msgBidFieldsRequired)
	}
	return validateBidAmount(req.BidAmount)
}

func validateBidAmount(amount *float64) error {
	if amount == nil || !(*amount > 0) {
		return apierrors.ValidationError(msgBidAmountPositive)
	}
	return nil
}

// validatePlanDetails enforces that brokers and employers carry plan details
func validatePlanDetails(userType models.UserType, employees *int, plan *models.PlanType) error {
	if !userType.RequiresPlan() {
		if plan != nil && !plan.IsValid() {
			return apierrors.ValidationError(msgInvalidPlan)
		}
		return nil
	}
	if employees == nil || *employees <= 0 {
		return apierrors.ValidationError(msgEmployeesRequired)
	}
	if plan == nil || !plan.IsValid() {
		return apierrors.ValidationError(msgPlanRequired)
	}
	return nil
}

// IsStrongPassword reports whether the password has at least 8 characters drawn from
// letters, digits and the allowed specials, with at least one of each class
func IsStrongPassword(password string) bool {
	if len(password) < models.MinPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(models.PasswordSpecial, r):
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

// reserveMessage formats the reserve the way clients see it, without trailing zeros
func reserveMessage(reserve float64) string {
	return "Bid amount must be greater than the reserve amount of $" + strconv.FormatFloat(reserve, 'f', -1, 64) + "."
}
