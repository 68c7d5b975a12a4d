package ports

import (
	"context"
	"time"

	"github.com/telcocrm/crm-system/internal/core/domain"
)

// ListFilter carries the common query parameters for list endpoints.
// Page is 1-based; Limit is capped by the service layer.
type ListFilter struct {
	Status string // optional: filter by entity status
	Search string // optional: partial match on name/email fields
	Page   int
	Limit  int
}

// UserRepository defines persistence for sign-in accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// First returns the oldest user in the system. Last resort of the
	// provisioning lookup chain.
	First(ctx context.Context) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository defines persistence for subscriber records.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Customer, int64, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// PlanRepository defines persistence for tariff plans.
type PlanRepository interface {
	Create(ctx context.Context, p *domain.Plan) (*domain.Plan, error)
	FindByID(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Plan, int64, error)
	Update(ctx context.Context, p *domain.Plan) error
	Delete(ctx context.Context, id string) error
}

// SubscriptionRepository defines persistence for subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error)
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Subscription, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Subscription, int64, error)
	Update(ctx context.Context, s *domain.Subscription) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// InvoiceRepository defines persistence for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Invoice, int64, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id string) error
	// TotalRevenue sums the amount of paid invoices issued in [from, to).
	// Zero values mean an open bound.
	TotalRevenue(ctx context.Context, from, to time.Time) (float64, error)
}

// TicketRepository defines persistence for support tickets.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.SupportTicket) (*domain.SupportTicket, error)
	FindByTicketID(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.SupportTicket, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.SupportTicket, int64, error)
	Update(ctx context.Context, t *domain.SupportTicket) error
	AppendMessage(ctx context.Context, ticketID string, msg domain.TicketMessage) error
	CountForYear(ctx context.Context, year int) (int64, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEvent) error
	List(ctx context.Context, filter ListFilter) ([]*domain.AuditEvent, int64, error)
}
