package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/frelsi/frelsi-api/internal/pkg/id"
)

// Meta carries the request context recorded with every audit row.
type Meta struct {
	IP        string
	UserAgent string
}

// Sink records authentication events. Record returns nothing: the audit trail
// must never become a failure point for the auth flow, so storage errors are
// reported to the operational log and swallowed.
type Sink interface {
	Record(ctx context.Context, email, action string, meta Meta, details map[string]any)
}

// Store is the persistence the sink writes through.
type Store interface {
	Append(ctx context.Context, e *domain.AuthLogEntry) error
}

type sink struct {
	store Store
}

func NewSink(store Store) Sink {
	return &sink{store: store}
}

func (s *sink) Record(ctx context.Context, email, action string, meta Meta, details map[string]any) {
	entry := &domain.AuthLogEntry{
		LogID:     id.New(),
		Email:     email,
		Action:    action,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Details:   details,
		CreatedAt: time.Now().UTC().Unix(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		slog.Error("failed to append auth log entry", "action", action, "email", email, "err", err)
	}
}
