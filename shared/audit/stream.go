package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	// DefaultStream is the Redis stream audit events are appended to
	DefaultStream = "bid-marketplace:audit"

	// DefaultPublishTimeout bounds each background publish
	DefaultPublishTimeout = 5 * time.Second
)

// ErrAuditDisabled is returned by stream queries when no publisher is configured
var ErrAuditDisabled = errors.New("audit stream disabled")

// Publisher appends an entry to a named stream and reports its length
type Publisher interface {
	PublishEvent(ctx context.Context, streamName string, data map[string]interface{}) (string, error)
	GetStreamLength(ctx context.Context, streamName string) (int64, error)
}

// StreamAuditor publishes audit events to a stream, fire-and-forget
type StreamAuditor struct {
	publisher Publisher
	stream    string
	timeout   time.Duration
}

// NewStreamAuditor creates an auditor writing to the given stream.
// A nil publisher yields a disabled auditor.
func NewStreamAuditor(publisher Publisher, stream string) *StreamAuditor {
	if stream == "" {
		stream = DefaultStream
	}
	if publisher == nil {
		slog.Info("Audit stream disabled",
			"reason", "no stream publisher configured",
			"impact", "Services will continue running but audit events will not be recorded")
	} else {
		slog.Info("Audit stream initialized", "stream", stream)
	}
	return &StreamAuditor{
		publisher: publisher,
		stream:    stream,
		timeout:   DefaultPublishTimeout,
	}
}

// IsEnabled returns whether the auditor has somewhere to publish
func (a *StreamAuditor) IsEnabled() bool {
	return a != nil && a.publisher != nil
}

// StreamLength returns the number of events retained in the audit stream
func (a *StreamAuditor) StreamLength(ctx context.Context) (int64, error) {
	if !a.IsEnabled() {
		return 0, ErrAuditDisabled
	}
	return a.publisher.GetStreamLength(ctx, a.stream)
}

// LogEvent publishes the event in a background goroutine.
// A background context is used so the publish outlives the request.
func (a *StreamAuditor) LogEvent(_ context.Context, event *Event) {
	if !a.IsEnabled() || event == nil {
		return
	}
	go a.publish(event)
}

func (a *StreamAuditor) publish(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	msgID, err := a.publisher.PublishEvent(ctx, a.stream, StreamValues(event))
	if err != nil {
		slog.Error("Failed to publish audit event",
			"eventType", event.EventType,
			"actorId", event.ActorID,
			"error", err)
		return
	}

	slog.Debug("Audit event published",
		"id", msgID,
		"eventType", event.EventType,
		"actorId", event.ActorID,
		"targetType", event.TargetType,
		"targetId", event.TargetID)
}
