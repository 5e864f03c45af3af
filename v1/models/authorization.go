package models

// Role represents user roles in the system
type Role string

const (
	RoleUser  Role = "user"  // Access to own bids and profile
	RoleAdmin Role = "admin" // Full access to users and bids, adjudicates bids
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Permission represents specific permissions
type Permission string

const (
	// Bid permissions
	PermissionCreateBid     Permission = "bid:create"
	PermissionReadBid       Permission = "bid:read"
	PermissionUpdateBid     Permission = "bid:update"
	PermissionReadAllBids   Permission = "bid:read:all"
	PermissionAdjudicateBid Permission = "bid:adjudicate"

	// Profile and user permissions
	PermissionReadProfile   Permission = "profile:read"
	PermissionUpdateProfile Permission = "profile:update"
	PermissionReadAllUsers  Permission = "user:read:all"
)

// RolePermissions defines what permissions each role has
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionCreateBid, PermissionReadBid, PermissionUpdateBid, PermissionReadAllBids, PermissionAdjudicateBid,
		PermissionReadProfile, PermissionUpdateProfile, PermissionReadAllUsers,
	},
	RoleUser: {
		// Users act on their own resources only; ownership is checked by the owning service
		PermissionCreateBid, PermissionReadBid, PermissionUpdateBid,
		PermissionReadProfile, PermissionUpdateProfile,
	},
}

// HasPermission checks if a role has a specific permission
func (r Role) HasPermission(permission Permission) bool {
	permissions, exists := RolePermissions[r]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
