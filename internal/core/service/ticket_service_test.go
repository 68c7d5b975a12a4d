package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

type stubTicketRepo struct {
	tickets map[string]*domain.SupportTicket
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{tickets: make(map[string]*domain.SupportTicket)}
}

func cloneTicket(t *domain.SupportTicket) *domain.SupportTicket {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Messages = append([]domain.TicketMessage(nil), t.Messages...)
	return &clone
}

func (r *stubTicketRepo) Create(_ context.Context, t *domain.SupportTicket) (*domain.SupportTicket, error) {
	copy := cloneTicket(t)
	copy.ID = copy.TicketID
	r.tickets[copy.TicketID] = cloneTicket(copy)
	return copy, nil
}

func (r *stubTicketRepo) FindByTicketID(_ context.Context, ticketID string) (*domain.SupportTicket, error) {
	if t, ok := r.tickets[ticketID]; ok {
		return cloneTicket(t), nil
	}
	return nil, domain.ErrTicketNotFound
}

func (r *stubTicketRepo) ListByCustomer(_ context.Context, customerID string) ([]*domain.SupportTicket, error) {
	var out []*domain.SupportTicket
	for _, t := range r.tickets {
		if t.CustomerID == customerID {
			out = append(out, cloneTicket(t))
		}
	}
	return out, nil
}

func (r *stubTicketRepo) List(_ context.Context, _ ports.ListFilter) ([]*domain.SupportTicket, int64, error) {
	out := make([]*domain.SupportTicket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, cloneTicket(t))
	}
	return out, int64(len(out)), nil
}

func (r *stubTicketRepo) Update(_ context.Context, t *domain.SupportTicket) error {
	if _, ok := r.tickets[t.TicketID]; !ok {
		return domain.ErrTicketNotFound
	}
	r.tickets[t.TicketID] = cloneTicket(t)
	return nil
}

func (r *stubTicketRepo) AppendMessage(_ context.Context, ticketID string, msg domain.TicketMessage) error {
	t, ok := r.tickets[ticketID]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.Messages = append(t.Messages, msg)
	return nil
}

func (r *stubTicketRepo) CountForYear(_ context.Context, year int) (int64, error) {
	var n int64
	for _, t := range r.tickets {
		if t.CreatedAt.Year() == year {
			n++
		}
	}
	return n, nil
}

func (r *stubTicketRepo) CountByStatus(_ context.Context, status domain.TicketStatus) (int64, error) {
	var n int64
	for _, t := range r.tickets {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

func TestTicketService_Create_AssignsSequentialIDs(t *testing.T) {
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, zerolog.Nop())

	first, err := svc.Create(context.Background(), ports.TicketInput{CustomerID: "c1", Subject: "No signal", Description: "…"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := svc.Create(context.Background(), ports.TicketInput{CustomerID: "c2", Subject: "Bill wrong", Description: "…"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	year := first.CreatedAt.Year()
	wantFirst := fmt.Sprintf("TK-%d%03d", year, 1)
	wantSecond := fmt.Sprintf("TK-%d%03d", year, 2)
	if first.TicketID != wantFirst {
		t.Fatalf("first id = %q, want %q", first.TicketID, wantFirst)
	}
	if second.TicketID != wantSecond {
		t.Fatalf("second id = %q, want %q", second.TicketID, wantSecond)
	}
	if first.Status != domain.TicketOpen {
		t.Fatalf("new ticket status = %q, want open", first.Status)
	}
	if first.Priority != "medium" {
		t.Fatalf("default priority = %q, want medium", first.Priority)
	}
}

func TestTicketService_UpdateStatus_ValidTransition(t *testing.T) {
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, zerolog.Nop())
	ticket, _ := svc.Create(context.Background(), ports.TicketInput{CustomerID: "c1", Subject: "x", Description: "y"})

	updated, err := svc.UpdateStatus(context.Background(), ticket.TicketID, domain.TicketResolved, "")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != domain.TicketResolved {
		t.Fatalf("status = %q, want resolved", updated.Status)
	}
	if updated.ResolvedAt == nil {
		t.Fatalf("ResolvedAt not set")
	}
}

func TestTicketService_UpdateStatus_RejectsInvalidTransition(t *testing.T) {
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, zerolog.Nop())
	ticket, _ := svc.Create(context.Background(), ports.TicketInput{CustomerID: "c1", Subject: "x", Description: "y"})
	_, _ = svc.UpdateStatus(context.Background(), ticket.TicketID, domain.TicketClosed, "")

	if _, err := svc.UpdateStatus(context.Background(), ticket.TicketID, domain.TicketOpen, ""); !errors.Is(err, domain.ErrInvalidTicketTransition) {
		t.Fatalf("expected ErrInvalidTicketTransition, got %v", err)
	}

	stored, _ := repo.FindByTicketID(context.Background(), ticket.TicketID)
	if stored.Status != domain.TicketClosed {
		t.Fatalf("rejected transition still wrote: %q", stored.Status)
	}
}

func TestTicketService_Assignment_MovesOpenToInProgress(t *testing.T) {
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, zerolog.Nop())
	ticket, _ := svc.Create(context.Background(), ports.TicketInput{CustomerID: "c1", Subject: "x", Description: "y"})

	updated, err := svc.UpdateStatus(context.Background(), ticket.TicketID, domain.TicketOpen, "agent-7")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.AssignedTo != "agent-7" {
		t.Fatalf("assignee = %q", updated.AssignedTo)
	}
	if updated.Status != domain.TicketInProgress {
		t.Fatalf("status = %q, want in_progress after assignment", updated.Status)
	}
}

func TestTicketService_AddMessage(t *testing.T) {
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, zerolog.Nop())
	ticket, _ := svc.Create(context.Background(), ports.TicketInput{CustomerID: "c1", Subject: "x", Description: "y"})

	msg := domain.TicketMessage{Sender: "customer", SenderID: "u1", Message: "any update?"}
	if err := svc.AddMessage(context.Background(), ticket.TicketID, msg); err != nil {
		t.Fatalf("AddMessage returned error: %v", err)
	}

	stored, _ := repo.FindByTicketID(context.Background(), ticket.TicketID)
	if len(stored.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(stored.Messages))
	}
	if stored.Messages[0].Timestamp.IsZero() {
		t.Fatalf("message timestamp not defaulted")
	}
}
