package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// SessionResolver is the single place role strings are normalized. Every
// consumer of authentication state goes through Resolve; nothing else in the
// codebase re-derives role validity.
type SessionResolver struct {
	store ports.SessionStore
	log   zerolog.Logger
}

func NewSessionResolver(store ports.SessionStore, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{store: store, log: log}
}

// Resolve returns the normalized authentication view for sessionID. Absence
// of a session, in any form, is the unauthenticated case and never an error.
//
// An authenticated session holding an invalid role is repaired in place: the
// normalized role is written back to the store on first observation, so a bad
// value never outlives a single read.
func (r *SessionResolver) Resolve(ctx context.Context, sessionID string) ports.SessionView {
	if sessionID == "" {
		return ports.SessionView{}
	}

	s, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return ports.SessionView{}
	}
	if !s.IsLoggedIn {
		return ports.SessionView{}
	}

	role := domain.NormalizeRole(s.Role)
	if role != s.Role {
		s.Role = role
		if saveErr := r.store.Save(ctx, s); saveErr != nil {
			r.log.Warn().Err(saveErr).Str("session_id", sessionID).Msg("failed to repair session role")
		} else {
			r.log.Debug().Str("session_id", sessionID).Str("role", role).Msg("repaired invalid session role")
		}
	}

	return ports.SessionView{IsAuthenticated: true, Role: role}
}
