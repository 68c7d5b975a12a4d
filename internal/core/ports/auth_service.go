package ports

import (
	"context"

	"github.com/telcocrm/crm-system/internal/core/domain"
)

// LoginResult carries everything the login handler needs to answer a
// successful sign-in.
type LoginResult struct {
	Token   string
	User    *domain.User
	Session *domain.Session
}

// AuthService implements sign-in, sign-up and session teardown.
type AuthService interface {
	// Login verifies credentials, persists a fresh session (full overwrite)
	// and returns a signed token carrying the session id.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Register creates an end-user account.
	Register(ctx context.Context, email, password, firstName, lastName, phoneNumber string) (*domain.User, error)
	// Logout clears every session field.
	Logout(ctx context.Context, sessionID string) error
	// ForgotPassword issues a single-use reset token. It succeeds regardless
	// of whether the account exists.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword completes the flow with a previously issued token.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// SessionResolver produces the normalized authentication view for a session.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) SessionView
}
