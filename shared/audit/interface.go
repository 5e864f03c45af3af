package audit

import "context"

// Auditor is the primary interface for audit logging operations.
//
// Implementations must not block the caller: events are delivered in the
// background and a disabled or unreachable sink degrades to a no-op.
type Auditor interface {
	// LogEvent records an audit event asynchronously.
	LogEvent(ctx context.Context, event *Event)

	// IsEnabled returns whether audit logging is currently enabled.
	// Callers can skip building expensive metadata when it is not.
	IsEnabled() bool
}

// NoopAuditor discards every event
type NoopAuditor struct{}

// LogEvent does nothing
func (NoopAuditor) LogEvent(context.Context, *Event) {}

// IsEnabled always returns false
func (NoopAuditor) IsEnabled() bool { return false }
