package ports

import (
	"context"

	"github.com/telcocrm/crm-system/internal/core/domain"
)

// SessionStore persists authenticated sessions. The production implementation
// is Redis-backed; tests substitute an in-memory fake.
type SessionStore interface {
	// Get returns the session for id, or domain.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save writes the full session record (login overwrites everything).
	Save(ctx context.Context, s *domain.Session) error
	// SetCustomer records the provisioned customer id on an existing session.
	SetCustomer(ctx context.Context, id, customerID string) error
	// Clear removes every field of the session (logout).
	Clear(ctx context.Context, id string) error
}

// SessionView is the normalized view produced by the session resolver.
type SessionView struct {
	IsAuthenticated bool
	Role            string
}
