package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// SubscriptionHandler handles HTTP requests for subscriptions. The plan and
// customer references are checked on create so a subscription can never point
// at records that do not exist.
type SubscriptionHandler struct {
	repo      ports.SubscriptionRepository
	plans     ports.PlanRepository
	customers ports.CustomerRepository
	audit     ports.AuditSink
}

func NewSubscriptionHandler(repo ports.SubscriptionRepository, plans ports.PlanRepository, customers ports.CustomerRepository, audit ports.AuditSink) *SubscriptionHandler {
	return &SubscriptionHandler{repo: repo, plans: plans, customers: customers, audit: audit}
}

type subscriptionRequest struct {
	CustomerID string    `json:"customerId" validate:"required"`
	PlanID     string    `json:"planId" validate:"required"`
	Status     string    `json:"status" validate:"omitempty,oneof=active paused cancelled expired"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	AutoRenew  bool      `json:"autoRenew"`
}

// List handles GET /api/sub/.
//
// @Summary      List subscriptions
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /api/sub/ [get]
func (h *SubscriptionHandler) List(c echo.Context) error {
	if customerID := c.QueryParam("customerId"); customerID != "" {
		subs, err := h.repo.ListByCustomer(c.Request().Context(), customerID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, listResponse{Data: subs, Total: int64(len(subs))})
	}

	filter := listFilterFrom(c)
	subs, total, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: subs, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// Get handles GET /api/sub/:id/.
func (h *SubscriptionHandler) Get(c echo.Context) error {
	sub, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

// Create handles POST /api/sub/create/.
//
// @Summary      Create a subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      subscriptionRequest  true  "Subscription details"
// @Success      201   {object}  domain.Subscription
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/sub/create/ [post]
func (h *SubscriptionHandler) Create(c echo.Context) error {
	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	if _, err := h.customers.FindByID(ctx, req.CustomerID); err != nil {
		return err
	}
	if _, err := h.plans.FindByID(ctx, req.PlanID); err != nil {
		return err
	}

	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = "active"
	}
	start := req.StartDate
	if start.IsZero() {
		start = now
	}

	sub, err := h.repo.Create(ctx, &domain.Subscription{
		CustomerID: req.CustomerID,
		PlanID:     req.PlanID,
		Status:     status,
		StartDate:  start,
		EndDate:    req.EndDate,
		AutoRenew:  req.AutoRenew,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "subscription.create", sub.ID)
	return c.JSON(http.StatusCreated, sub)
}

// Update handles PUT /api/sub/update/:id/. The customer link is immutable;
// plan changes and status moves go through here.
func (h *SubscriptionHandler) Update(c echo.Context) error {
	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	sub, err := h.repo.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	if req.PlanID != sub.PlanID {
		if _, err := h.plans.FindByID(ctx, req.PlanID); err != nil {
			return err
		}
		sub.PlanID = req.PlanID
	}
	if req.Status != "" {
		sub.Status = req.Status
	}
	if !req.StartDate.IsZero() {
		sub.StartDate = req.StartDate
	}
	if !req.EndDate.IsZero() {
		sub.EndDate = req.EndDate
	}
	sub.AutoRenew = req.AutoRenew
	sub.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(ctx, sub); err != nil {
		return err
	}

	h.enqueueAudit(c, "subscription.update", sub.ID)
	return c.JSON(http.StatusOK, sub)
}

// Delete handles DELETE /api/sub/delete/:id/.
func (h *SubscriptionHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.repo.FindByID(c.Request().Context(), id); err != nil {
		return err
	}
	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.enqueueAudit(c, "subscription.delete", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *SubscriptionHandler) enqueueAudit(c echo.Context, action, entityID string) {
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	h.audit.Enqueue(domain.AuditEvent{
		Actor:     email,
		ActorRole: role,
		Action:    action,
		Entity:    "subscription",
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}
