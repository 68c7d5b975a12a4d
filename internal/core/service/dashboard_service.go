package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// DashboardService aggregates cross-entity statistics for the admin and user
// dashboards.
type DashboardService struct {
	customers     ports.CustomerRepository
	subscriptions ports.SubscriptionRepository
	invoices      ports.InvoiceRepository
	tickets       ports.TicketRepository
	log           zerolog.Logger
}

func NewDashboardService(
	customers ports.CustomerRepository,
	subscriptions ports.SubscriptionRepository,
	invoices ports.InvoiceRepository,
	tickets ports.TicketRepository,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		customers:     customers,
		subscriptions: subscriptions,
		invoices:      invoices,
		tickets:       tickets,
		log:           log,
	}
}

func (s *DashboardService) AdminStats(ctx context.Context) (*ports.AdminStats, error) {
	stats := &ports.AdminStats{}

	total, err := s.invoices.TotalRevenue(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = total

	stats.RevenueGrowthPct = s.revenueGrowth(ctx)

	if stats.TotalCustomers, err = s.customers.CountByStatus(ctx, ""); err != nil {
		return nil, err
	}
	if stats.ActiveCustomers, err = s.customers.CountByStatus(ctx, "active"); err != nil {
		return nil, err
	}
	if stats.ActiveSubscriptions, err = s.subscriptions.CountByStatus(ctx, "active"); err != nil {
		return nil, err
	}
	if stats.OpenTickets, err = s.tickets.CountByStatus(ctx, domain.TicketOpen); err != nil {
		return nil, err
	}

	return stats, nil
}

// revenueGrowth compares the current calendar month with the previous one.
// A missing month is reported as zero growth; stats should degrade, not fail
// the whole dashboard.
func (s *DashboardService) revenueGrowth(ctx context.Context) float64 {
	now := time.Now().UTC()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := currentStart.AddDate(0, -1, 0)

	current, err := s.invoices.TotalRevenue(ctx, currentStart, time.Time{})
	if err != nil {
		s.log.Warn().Err(err).Msg("current month revenue unavailable")
		return 0
	}
	previous, err := s.invoices.TotalRevenue(ctx, prevStart, currentStart)
	if err != nil || previous == 0 {
		return 0
	}

	return (current - previous) / previous * 100
}

func (s *DashboardService) UserStats(ctx context.Context, userID string) (*ports.UserStats, error) {
	stats := &ports.UserStats{
		Subscriptions: []*domain.Subscription{},
		Invoices:      []*domain.Invoice{},
		OpenTickets:   []*domain.SupportTicket{},
	}

	customer, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		// A user without a customer record simply has an empty dashboard.
		return stats, nil
	}
	stats.Customer = customer

	if subs, err := s.subscriptions.ListByCustomer(ctx, customer.ID); err == nil {
		stats.Subscriptions = subs
	}
	if invs, err := s.invoices.ListByCustomer(ctx, customer.ID); err == nil {
		stats.Invoices = invs
	}
	if tickets, err := s.tickets.ListByCustomer(ctx, customer.ID); err == nil {
		for _, t := range tickets {
			if t.Status == domain.TicketOpen || t.Status == domain.TicketInProgress {
				stats.OpenTickets = append(stats.OpenTickets, t)
			}
		}
	}

	return stats, nil
}
