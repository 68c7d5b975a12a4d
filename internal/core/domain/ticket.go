package domain

import (
	"errors"
	"time"
)

// TicketStatus represents the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// ticketTransitions defines the allowed lifecycle moves. Closed is terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:       {TicketInProgress, TicketResolved, TicketClosed},
	TicketInProgress: {TicketResolved, TicketClosed},
	TicketResolved:   {TicketClosed},
}

var (
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrInvalidTicketTransition = errors.New("invalid ticket status transition")
)

// CanTransitionTo reports whether a move from s to next is allowed.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TicketMessage is one entry in a ticket's conversation thread.
type TicketMessage struct {
	Sender    string    `json:"sender" bson:"sender"` // "customer" or "support"
	SenderID  string    `json:"senderId" bson:"senderId"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// SupportTicket is a customer issue tracked by support staff.
type SupportTicket struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	TicketID    string          `json:"ticketId" bson:"ticketId"` // human-facing, TK-YYYYNNN
	CustomerID  string          `json:"customerId" bson:"customerId"`
	Subject     string          `json:"subject" bson:"subject"`
	Description string          `json:"description" bson:"description"`
	Status      TicketStatus    `json:"status" bson:"status"`
	Priority    string          `json:"priority" bson:"priority"`
	Category    string          `json:"category,omitempty" bson:"category,omitempty"`
	AssignedTo  string          `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Messages    []TicketMessage `json:"messages" bson:"messages"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}
