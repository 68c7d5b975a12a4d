package domain

import (
	"errors"
	"time"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Subscription links a customer to a plan for a billing period.
type Subscription struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	CustomerID string    `json:"customerId" bson:"customerId"`
	PlanID     string    `json:"planId" bson:"planId"`
	Status     string    `json:"status" bson:"status"`
	StartDate  time.Time `json:"startDate" bson:"startDate"`
	EndDate    time.Time `json:"endDate" bson:"endDate"`
	AutoRenew  bool      `json:"autoRenew" bson:"autoRenew"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
