package ports

import (
	"context"

	"github.com/telcocrm/crm-system/internal/core/domain"
)

// CustomerInput carries the writable fields of a customer record.
type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	UserID      string
	Address     domain.Address
	Status      string
}

// CustomerService implements subscriber CRUD. Updates are mirrored to the
// legacy billing backend through CustomerSync.
type CustomerService interface {
	Create(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Customer, int64, error)
	Update(ctx context.Context, id string, in CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerSync pushes customer records to the legacy billing backend. The
// backend's supported update verb is not reliably known, so implementations
// walk a fixed verb-fallback sequence.
type CustomerSync interface {
	UpdateCustomer(ctx context.Context, id string, c *domain.Customer) (*domain.Customer, error)
}

// ProvisionService guarantees a signed-in user has a customer record.
type ProvisionService interface {
	// EnsureCustomerExists returns the session's customer id, creating the
	// customer record first when none exists. Failure is non-fatal to login:
	// callers log and proceed without an id.
	EnsureCustomerExists(ctx context.Context, sessionID string) (string, error)
}

// TicketInput carries the writable fields of a support ticket.
type TicketInput struct {
	CustomerID  string
	Subject     string
	Description string
	Priority    string
	Category    string
}

// TicketService implements the support ticket lifecycle.
type TicketService interface {
	Create(ctx context.Context, in TicketInput) (*domain.SupportTicket, error)
	Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.SupportTicket, int64, error)
	// UpdateStatus enforces the ticket state machine.
	UpdateStatus(ctx context.Context, ticketID string, next domain.TicketStatus, assignedTo string) (*domain.SupportTicket, error)
	AddMessage(ctx context.Context, ticketID string, msg domain.TicketMessage) error
}

// AdminStats is the aggregate block behind the admin dashboard.
type AdminStats struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	RevenueGrowthPct    float64 `json:"revenueGrowthPct"`
	TotalCustomers      int64   `json:"totalCustomers"`
	ActiveCustomers     int64   `json:"activeCustomers"`
	ActiveSubscriptions int64   `json:"activeSubscriptions"`
	OpenTickets         int64   `json:"openTickets"`
}

// UserStats is the per-user dashboard block.
type UserStats struct {
	Customer      *domain.Customer        `json:"customer,omitempty"`
	Subscriptions []*domain.Subscription  `json:"subscriptions"`
	Invoices      []*domain.Invoice       `json:"invoices"`
	OpenTickets   []*domain.SupportTicket `json:"openTickets"`
}

// DashboardService aggregates cross-entity statistics.
type DashboardService interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
	UserStats(ctx context.Context, userID string) (*UserStats, error)
}

// AuditSink accepts audit events for asynchronous persistence. Implemented by
// the queue dispatcher; enqueueing never blocks the caller beyond the channel
// buffer.
type AuditSink interface {
	Enqueue(e domain.AuditEvent)
}
