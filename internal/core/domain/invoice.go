package domain

import (
	"errors"
	"time"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Invoice statuses.
const (
	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	Description string  `json:"description" bson:"description"`
	Amount      float64 `json:"amount" bson:"amount"`
}

// Invoice bills a customer for a subscription period.
type Invoice struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	CustomerID     string        `json:"customerId" bson:"customerId"`
	SubscriptionID string        `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	Amount         float64       `json:"amount" bson:"amount"`
	Status         string        `json:"status" bson:"status"`
	IssueDate      time.Time     `json:"issueDate" bson:"issueDate"`
	DueDate        time.Time     `json:"dueDate" bson:"dueDate"`
	PaidDate       *time.Time    `json:"paidDate,omitempty" bson:"paidDate,omitempty"`
	Items          []InvoiceItem `json:"items" bson:"items"`
	PaymentMethod  string        `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}
