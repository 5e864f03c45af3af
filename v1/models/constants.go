package models

import "regexp"

// UserType identifies who a marketplace account represents
type UserType string

const (
	UserTypePatient  UserType = "patient"
	UserTypeBroker   UserType = "broker"
	UserTypeEmployer UserType = "employer"
)

// IsValid reports whether the user type is one of the known types
func (t UserType) IsValid() bool {
	switch t {
	case UserTypePatient, UserTypeBroker, UserTypeEmployer:
		return true
	}
	return false
}

// RequiresPlan reports whether accounts of this type must carry plan details
func (t UserType) RequiresPlan() bool {
	return t == UserTypeBroker || t == UserTypeEmployer
}

// PlanType represents the health plan offered by a broker or employer
type PlanType string

const (
	PlanTypePPO    PlanType = "PPO"
	PlanTypeHMO    PlanType = "HMO"
	PlanTypeEPO    PlanType = "EPO"
	PlanTypeHDHP   PlanType = "HDHP"
	PlanTypeCustom PlanType = "Custom"
)

// IsValid reports whether the plan type is one of the known plans
func (p PlanType) IsValid() bool {
	switch p {
	case PlanTypePPO, PlanTypeHMO, PlanTypeEPO, PlanTypeHDHP, PlanTypeCustom:
		return true
	}
	return false
}

// BidStatus represents the adjudication state of a bid
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusApproved BidStatus = "approved"
	BidStatusDenied   BidStatus = "denied"
)

// IsValid reports whether the status is a known bid status
func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusPending, BidStatusApproved, BidStatusDenied:
		return true
	}
	return false
}

// IsTerminal reports whether the status is an adjudication outcome
func (s BidStatus) IsTerminal() bool {
	return s == BidStatusApproved || s == BidStatusDenied
}

// Pagination defaults shared by every paginated listing
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// Field format constraints
var (
	PhonePattern    = regexp.MustCompile(`^\d{10}$`)
	ZipCodePattern  = regexp.MustCompile(`^\d{5}$`)
	EmailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	PasswordSpecial = "@$!%*?&#"
)

const (
	MinPasswordLength = 8
	MaxNameLength     = 255
)
