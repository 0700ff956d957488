package logging

import (
	"context"

	"github.com/insforge/core/internal/audit"
)

// SecuritySink adapts a *ClickHouseLogger to audit.SecuritySink, translating
// audit's domain-shaped SecurityEvent into the ch-tagged row ClickHouseLogger
// actually inserts.
type SecuritySink struct {
	logger *ClickHouseLogger
}

func NewSecuritySink(logger *ClickHouseLogger) *SecuritySink {
	return &SecuritySink{logger: logger}
}

func (s *SecuritySink) LogSecurity(ctx context.Context, event audit.SecurityEvent) error {
	return s.logger.LogSecurity(ctx, SecurityLogEntry{
		Timestamp: event.Timestamp,
		EventType: event.EventType,
		Severity:  event.Severity,
		Actor:     event.Actor,
		Resource:  event.Resource,
		Action:    event.Action,
		Result:    event.Result,
		Message:   event.Message,
		Metadata:  event.Metadata,
	})
}
