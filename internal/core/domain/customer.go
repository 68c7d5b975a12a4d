package domain

import (
	"errors"
	"time"
)

var ErrCustomerNotFound = errors.New("customer not found")

// Address is the postal address attached to a customer record.
type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// CurrentPlan is the plan currently attached to a customer, denormalized onto
// the customer document the way the billing backend stores it.
type CurrentPlan struct {
	PlanID    string     `json:"planId,omitempty" bson:"planId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	AutoRenew bool       `json:"autoRenew" bson:"autoRenew"`
}

// Customer is the telecom subscriber entity. A User owns at most one Customer;
// the owning user is never changed after creation.
type Customer struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	FirstName   string      `json:"firstName" bson:"firstName"`
	LastName    string      `json:"lastName" bson:"lastName"`
	Email       string      `json:"email" bson:"email"`
	PhoneNumber string      `json:"phoneNumber" bson:"phoneNumber"`
	UserID      string      `json:"userId,omitempty" bson:"userId,omitempty"`
	Address     Address     `json:"address" bson:"address"`
	CurrentPlan CurrentPlan `json:"currentPlan" bson:"currentPlan"`
	Balance     float64     `json:"balance" bson:"balance"`
	Status      string      `json:"status" bson:"status"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}
