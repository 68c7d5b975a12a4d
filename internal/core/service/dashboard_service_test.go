package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

type stubSubscriptionRepo struct {
	subs map[string]*domain.Subscription
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{subs: make(map[string]*domain.Subscription)}
}

func (r *stubSubscriptionRepo) Create(_ context.Context, s *domain.Subscription) (*domain.Subscription, error) {
	clone := *s
	clone.ID = "sub-" + s.CustomerID
	r.subs[clone.ID] = &clone
	return &clone, nil
}

func (r *stubSubscriptionRepo) FindByID(_ context.Context, id string) (*domain.Subscription, error) {
	if s, ok := r.subs[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (r *stubSubscriptionRepo) ListByCustomer(_ context.Context, customerID string) ([]*domain.Subscription, error) {
	var out []*domain.Subscription
	for _, s := range r.subs {
		if s.CustomerID == customerID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubSubscriptionRepo) List(_ context.Context, _ ports.ListFilter) ([]*domain.Subscription, int64, error) {
	out := make([]*domain.Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		clone := *s
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubSubscriptionRepo) Update(_ context.Context, s *domain.Subscription) error {
	if _, ok := r.subs[s.ID]; !ok {
		return domain.ErrSubscriptionNotFound
	}
	clone := *s
	r.subs[s.ID] = &clone
	return nil
}

func (r *stubSubscriptionRepo) Delete(_ context.Context, id string) error {
	delete(r.subs, id)
	return nil
}

func (r *stubSubscriptionRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, s := range r.subs {
		if status == "" || s.Status == status {
			n++
		}
	}
	return n, nil
}

type stubInvoiceRepo struct {
	invoices []*domain.Invoice
}

func (r *stubInvoiceRepo) Create(_ context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	clone := *inv
	r.invoices = append(r.invoices, &clone)
	return &clone, nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.ID == id {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (r *stubInvoiceRepo) ListByCustomer(_ context.Context, customerID string) ([]*domain.Invoice, error) {
	var out []*domain.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			clone := *inv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, _ ports.ListFilter) ([]*domain.Invoice, int64, error) {
	out := make([]*domain.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		clone := *inv
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) Update(_ context.Context, _ *domain.Invoice) error { return nil }
func (r *stubInvoiceRepo) Delete(_ context.Context, _ string) error          { return nil }

func (r *stubInvoiceRepo) TotalRevenue(_ context.Context, from, to time.Time) (float64, error) {
	var total float64
	for _, inv := range r.invoices {
		if inv.Status != domain.InvoicePaid {
			continue
		}
		if !from.IsZero() && inv.IssueDate.Before(from) {
			continue
		}
		if !to.IsZero() && !inv.IssueDate.Before(to) {
			continue
		}
		total += inv.Amount
	}
	return total, nil
}

func TestDashboardService_AdminStats(t *testing.T) {
	customers := newStubCustomerRepo()
	subs := newStubSubscriptionRepo()
	invoices := &stubInvoiceRepo{}
	tickets := newStubTicketRepo()
	svc := NewDashboardService(customers, subs, invoices, tickets, zerolog.Nop())
	ctx := context.Background()

	_, _ = customers.Create(ctx, &domain.Customer{UserID: "u1", Status: "active"})
	_, _ = customers.Create(ctx, &domain.Customer{UserID: "u2", Status: "inactive"})
	_, _ = subs.Create(ctx, &domain.Subscription{CustomerID: "c1", Status: "active"})
	now := time.Now().UTC()
	_, _ = invoices.Create(ctx, &domain.Invoice{Status: domain.InvoicePaid, Amount: 120, IssueDate: now})
	_, _ = invoices.Create(ctx, &domain.Invoice{Status: domain.InvoicePending, Amount: 80, IssueDate: now})
	_, _ = tickets.Create(ctx, &domain.SupportTicket{TicketID: "TK-1", Status: domain.TicketOpen, CreatedAt: now})

	stats, err := svc.AdminStats(ctx)
	if err != nil {
		t.Fatalf("AdminStats returned error: %v", err)
	}
	if stats.TotalRevenue != 120 {
		t.Fatalf("TotalRevenue = %v, want 120 (pending invoices excluded)", stats.TotalRevenue)
	}
	if stats.TotalCustomers != 2 || stats.ActiveCustomers != 1 {
		t.Fatalf("customer counts = %d/%d, want 2/1", stats.TotalCustomers, stats.ActiveCustomers)
	}
	if stats.ActiveSubscriptions != 1 {
		t.Fatalf("ActiveSubscriptions = %d, want 1", stats.ActiveSubscriptions)
	}
	if stats.OpenTickets != 1 {
		t.Fatalf("OpenTickets = %d, want 1", stats.OpenTickets)
	}
}

func TestDashboardService_UserStats_NoCustomer(t *testing.T) {
	svc := NewDashboardService(newStubCustomerRepo(), newStubSubscriptionRepo(), &stubInvoiceRepo{}, newStubTicketRepo(), zerolog.Nop())

	stats, err := svc.UserStats(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("UserStats returned error: %v", err)
	}
	if stats.Customer != nil {
		t.Fatalf("expected empty dashboard, got customer %+v", stats.Customer)
	}
	if stats.Subscriptions == nil || stats.Invoices == nil || stats.OpenTickets == nil {
		t.Fatalf("empty dashboard slices must be non-nil for JSON rendering")
	}
}

func TestDashboardService_UserStats_FiltersOpenTickets(t *testing.T) {
	customers := newStubCustomerRepo()
	subs := newStubSubscriptionRepo()
	invoices := &stubInvoiceRepo{}
	tickets := newStubTicketRepo()
	svc := NewDashboardService(customers, subs, invoices, tickets, zerolog.Nop())
	ctx := context.Background()

	customer, _ := customers.Create(ctx, &domain.Customer{UserID: "u1", Status: "active"})
	_, _ = subs.Create(ctx, &domain.Subscription{CustomerID: customer.ID, Status: "active"})
	_, _ = invoices.Create(ctx, &domain.Invoice{CustomerID: customer.ID, Status: domain.InvoicePaid, Amount: 50})
	_, _ = tickets.Create(ctx, &domain.SupportTicket{TicketID: "TK-1", CustomerID: customer.ID, Status: domain.TicketOpen})
	_, _ = tickets.Create(ctx, &domain.SupportTicket{TicketID: "TK-2", CustomerID: customer.ID, Status: domain.TicketClosed})

	stats, err := svc.UserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("UserStats returned error: %v", err)
	}
	if stats.Customer == nil || stats.Customer.ID != customer.ID {
		t.Fatalf("customer block missing")
	}
	if len(stats.Subscriptions) != 1 || len(stats.Invoices) != 1 {
		t.Fatalf("subs/invoices = %d/%d, want 1/1", len(stats.Subscriptions), len(stats.Invoices))
	}
	if len(stats.OpenTickets) != 1 || stats.OpenTickets[0].TicketID != "TK-1" {
		t.Fatalf("open tickets filter failed: %+v", stats.OpenTickets)
	}
}
