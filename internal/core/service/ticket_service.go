package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// TicketService implements the support ticket lifecycle.
type TicketService struct {
	repo ports.TicketRepository
	log  zerolog.Logger
}

func NewTicketService(repo ports.TicketRepository, log zerolog.Logger) *TicketService {
	return &TicketService{repo: repo, log: log}
}

func (s *TicketService) Create(ctx context.Context, in ports.TicketInput) (*domain.SupportTicket, error) {
	now := time.Now().UTC()

	ticketID, err := s.nextTicketID(ctx, now)
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}

	ticket := &domain.SupportTicket{
		TicketID:    ticketID,
		CustomerID:  in.CustomerID,
		Subject:     in.Subject,
		Description: in.Description,
		Status:      domain.TicketOpen,
		Priority:    priority,
		Category:    in.Category,
		Messages:    []domain.TicketMessage{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, ticket)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create ticket")
		return nil, err
	}

	s.log.Info().Str("ticket_id", created.TicketID).Str("customer_id", created.CustomerID).Msg("ticket created")
	return created, nil
}

func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	return s.repo.FindByTicketID(ctx, ticketID)
}

func (s *TicketService) List(ctx context.Context, filter ports.ListFilter) ([]*domain.SupportTicket, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves a ticket through the lifecycle state machine; invalid
// transitions are rejected before any write.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, next domain.TicketStatus, assignedTo string) (*domain.SupportTicket, error) {
	ticket, err := s.repo.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if next != ticket.Status {
		if !ticket.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTicketTransition, ticket.Status, next)
		}
		ticket.Status = next
		if next == domain.TicketResolved {
			now := time.Now().UTC()
			ticket.ResolvedAt = &now
		}
	}
	if assignedTo != "" {
		ticket.AssignedTo = assignedTo
		if ticket.Status == domain.TicketOpen {
			ticket.Status = domain.TicketInProgress
		}
	}
	ticket.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) AddMessage(ctx context.Context, ticketID string, msg domain.TicketMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return s.repo.AppendMessage(ctx, ticketID, msg)
}

// nextTicketID produces the human-facing id TK-YYYYNNN, numbering tickets
// sequentially within the calendar year.
func (s *TicketService) nextTicketID(ctx context.Context, now time.Time) (string, error) {
	count, err := s.repo.CountForYear(ctx, now.Year())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TK-%d%03d", now.Year(), count+1), nil
}
