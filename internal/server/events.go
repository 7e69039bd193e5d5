package server

import (
	"context"
	"time"

	"tasklink/internal/events"
)

// publish emits a lifecycle event after a successful write. Failures are
// logged and never reach the client.
func (s *Server) publish(ctx context.Context, entity, action string, payload any) {
	if s.publisher == nil {
		return
	}
	subject := events.Subject(s.subjectPrefix, entity, action)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), subject, payload); err != nil {
		s.log().Warn("publish event", "subject", subject, "error", err, "request_id", requestIDFrom(ctx))
	}
}

func eventTime() time.Time {
	return time.Now().UTC()
}

func (s *Server) eventsEnabled() bool {
	if s.publisher == nil {
		return false
	}
	_, noop := s.publisher.(*events.NoopPublisher)
	return !noop
}
