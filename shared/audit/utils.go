package audit

import (
	"encoding/json"
	"log/slog"
	"time"
)

// MarshalMetadata safely marshals metadata to json.RawMessage.
// Returns empty JSON object "{}" on error to ensure valid JSON.
// Returns nil if metadata is nil.
func MarshalMetadata(metadata map[string]interface{}) json.RawMessage {
	if metadata == nil {
		return nil
	}
	bytes, err := json.Marshal(metadata)
	if err != nil {
		slog.Error("Failed to marshal metadata for audit", "error", err)
		return json.RawMessage("{}")
	}
	return json.RawMessage(bytes)
}

// CurrentTimestamp returns current UTC time in RFC3339 format.
func CurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewEvent builds a successful event stamped with the current time
func NewEvent(eventType, actorID, actorRole, targetType, targetID string, metadata map[string]interface{}) *Event {
	return &Event{
		Timestamp:  CurrentTimestamp(),
		EventType:  eventType,
		Status:     StatusSuccess,
		ActorID:    actorID,
		ActorRole:  actorRole,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   MarshalMetadata(metadata),
	}
}

// StreamValues flattens an event into the field/value pairs of a stream entry
func StreamValues(event *Event) map[string]interface{} {
	values := map[string]interface{}{
		"timestamp":  event.Timestamp,
		"eventType":  event.EventType,
		"status":     event.Status,
		"actorId":    event.ActorID,
		"targetType": event.TargetType,
	}
	if event.ActorRole != "" {
		values["actorRole"] = event.ActorRole
	}
	if event.TargetID != "" {
		values["targetId"] = event.TargetID
	}
	if len(event.Metadata) > 0 {
		values["metadata"] = string(event.Metadata)
	}
	return values
}
