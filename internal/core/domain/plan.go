package domain

import (
	"errors"
	"time"
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanFeatures describes what a tariff plan includes.
type PlanFeatures struct {
	Data  string `json:"data" bson:"data"`
	Calls string `json:"calls" bson:"calls"`
	SMS   string `json:"sms" bson:"sms"`
	Speed string `json:"speed" bson:"speed"`
}

// Plan is a sellable tariff.
type Plan struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	Name         string       `json:"name" bson:"name"`
	Description  string       `json:"description" bson:"description"`
	Price        float64      `json:"price" bson:"price"`
	BillingCycle string       `json:"billingCycle" bson:"billingCycle"`
	Features     PlanFeatures `json:"features" bson:"features"`
	Status       string       `json:"status" bson:"status"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}
