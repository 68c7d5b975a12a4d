package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

const resetTokenTTL = 30 * time.Minute

// ResetTokenStore holds single-use password reset tokens (Redis in
// production).
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the user id for token and deletes it atomically.
	Consume(ctx context.Context, token string) (string, error)
}

// AuthService implements login, registration and session teardown.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	resets    ResetTokenStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, resets ResetTokenStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		resets:    resets,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Login verifies credentials and persists a fresh session. The stored role is
// lower-cased here, at the single write site, so the guard only ever compares
// canonical role strings.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		ID:         uuid.NewString(),
		IsLoggedIn: true,
		Role:       strings.ToLower(user.Role),
		UserID:     user.ID,
		Email:      user.Email,
		UserName:   user.DisplayName(),
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, err
	}
	session.Token = token

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", session.Role).Msg("user logged in")
	return &ports.LoginResult{Token: token, User: user, Session: session}, nil
}

// Register creates an end-user account. Role is always "user"; elevated
// accounts are created by a superadmin through the user management API.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName, phoneNumber string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.RoleUser,
		Status:       "active",
		PhoneNumber:  phoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.users.Create(ctx, user)
}

// Logout clears every field of the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Clear(ctx, sessionID)
}

// ForgotPassword issues a single-use reset token. Unknown accounts are
// silently accepted so the endpoint does not leak which emails exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.resets.Save(ctx, token, user.ID, resetTokenTTL); err != nil {
		return err
	}

	// Delivery is out of band; operators read the token from the debug log
	// until a mail integration lands.
	s.log.Debug().Str("user_id", user.ID).Str("reset_token", token).Msg("password reset token issued")
	return nil
}

// ResetPassword completes the forgot-password flow with a previously issued
// token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		return domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()

	return s.users.Update(ctx, user)
}

func (s *AuthService) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"email":      session.Email,
		"role":       session.Role,
		"exp":        time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
