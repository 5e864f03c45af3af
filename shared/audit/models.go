package audit

import (
	"encoding/json"
)

// Event is a single marketplace audit record
type Event struct {
	// Temporal
	Timestamp string `json:"timestamp"` // RFC 3339, UTC

	// Event Classification
	EventType string `json:"eventType"` // USER_REGISTERED, BID_PLACED, ...
	Status    string `json:"status"`    // SUCCESS, FAILURE

	// Actor Information
	ActorID   string `json:"actorId"`
	ActorRole string `json:"actorRole,omitempty"`

	// Target Information
	TargetType string `json:"targetType"` // USER, BID
	TargetID   string `json:"targetId,omitempty"`

	// Metadata never carries credentials or tokens
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Audit log status constants
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Event types
const (
	EventUserRegistered = "USER_REGISTERED"
	EventUserLogin      = "USER_LOGIN"
	EventUserLogout     = "USER_LOGOUT"
	EventProfileUpdated = "PROFILE_UPDATED"
	EventBidPlaced      = "BID_PLACED"
	EventBidAmended     = "BID_AMENDED"
	EventBidAdjudicated = "BID_ADJUDICATED"
)

// Target types
const (
	TargetUser = "USER"
	TargetBid  = "BID"
)
