package models

// Request/Response DTOs for V1 API endpoints

// RegisterRequest Auth DTOs
type RegisterRequest struct {
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Password          string    `json:"password"`
	Phone             string    `json:"phone"`
	ZipCode           string    `json:"zipCode"`
	Type              UserType  `json:"type"`
	NumberOfEmployees *int      `json:"numberOfEmployees,omitempty"`
	PlanType          *PlanType `json:"planType,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	Token string `json:"token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// UpdateProfileRequest lists every field a user may change about themselves.
// Email, password, type and role are deliberately absent.
type UpdateProfileRequest struct {
	FirstName         *string   `json:"firstName,omitempty"`
	LastName          *string   `json:"lastName,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	ZipCode           *string   `json:"zipCode,omitempty"`
	NumberOfEmployees *int      `json:"numberOfEmployees,omitempty"`
	PlanType          *PlanType `json:"planType,omitempty"`
}

// IsEmpty reports whether the request carries no allow-listed field
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Phone == nil && r.ZipCode == nil &&
		r.NumberOfEmployees == nil && r.PlanType == nil
}

// PlaceBidRequest Bid DTOs
type PlaceBidRequest struct {
	CPTDataID string   `json:"cptDataId"`
	BidAmount *float64 `json:"bidAmount"`
}

type AmendBidRequest struct {
	BidAmount *float64 `json:"bidAmount"`
}

type AdjudicateBidRequest struct {
	Status        BidStatus `json:"status"`
	AdminComments *string   `json:"adminComments,omitempty"`
}

// PageQuery carries 1-indexed pagination parameters
type PageQuery struct {
	Page  int
	Limit int
}

// Normalize applies the default page and limit and caps both
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Offset returns the number of records to skip for the current page.
// Out of range values are clamped so the product cannot overflow.
func (q PageQuery) Offset() int {
	page := min(max(q.Page, 1), MaxPage)
	limit := min(max(q.Limit, 0), MaxLimit)
	return (page - 1) * limit
}

type SearchQuery struct {
	CPT string
	Zip string
	PageQuery
}

type UserListQuery struct {
	Type string
	PageQuery
}

type BidListQuery struct {
	Status string
	PageQuery
}

// Pagination describes a page of results
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes page metadata from a total count
func NewPagination(total int64, q PageQuery) Pagination {
	totalPages := 0
	if q.Limit > 0 {
		totalPages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Pagination{
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}
}

// SearchResponse Response DTOs
type SearchResponse struct {
	Results    []CPTListing `json:"results"`
	Pagination Pagination   `json:"pagination"`
}

type UserListResponse struct {
	Users      []UserWithBidCount `json:"users"`
	Pagination Pagination         `json:"pagination"`
}

type BidListResponse struct {
	Bids       []Bid      `json:"bids"`
	Pagination Pagination `json:"pagination"`
}

type UserBidsResponse struct {
	User *User `json:"user"`
	Bids []Bid `json:"bids"`
}

type DashboardResponse struct {
	User      *User `json:"user"`
	Bids      []Bid `json:"bids"`
	TotalBids int   `json:"totalBids"`
}
