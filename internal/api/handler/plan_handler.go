package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// PlanHandler handles HTTP requests for tariff plans. Plans are thin CRUD
// with no cross-entity rules, so the handler talks to the repository
// directly.
type PlanHandler struct {
	repo  ports.PlanRepository
	audit ports.AuditSink
}

func NewPlanHandler(repo ports.PlanRepository, audit ports.AuditSink) *PlanHandler {
	return &PlanHandler{repo: repo, audit: audit}
}

type planFeaturesRequest struct {
	Data  string `json:"data"`
	Calls string `json:"calls"`
	SMS   string `json:"sms"`
	Speed string `json:"speed"`
}

type planRequest struct {
	Name         string              `json:"name" validate:"required"`
	Description  string              `json:"description"`
	Price        float64             `json:"price" validate:"gte=0"`
	BillingCycle string              `json:"billingCycle" validate:"required,oneof=monthly quarterly yearly"`
	Features     planFeaturesRequest `json:"features"`
	Status       string              `json:"status" validate:"omitempty,oneof=active inactive"`
}

// List handles GET /api/plans/.
//
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /api/plans/ [get]
func (h *PlanHandler) List(c echo.Context) error {
	filter := listFilterFrom(c)
	plans, total, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: plans, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// Get handles GET /api/plans/:id/.
func (h *PlanHandler) Get(c echo.Context) error {
	plan, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Create handles POST /api/plans/create/.
//
// @Summary      Create a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      planRequest  true  "Plan details"
// @Success      201   {object}  domain.Plan
// @Failure      400   {object}  map[string]string
// @Router       /api/plans/create/ [post]
func (h *PlanHandler) Create(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = "active"
	}
	plan, err := h.repo.Create(c.Request().Context(), &domain.Plan{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		BillingCycle: req.BillingCycle,
		Features: domain.PlanFeatures{
			Data:  req.Features.Data,
			Calls: req.Features.Calls,
			SMS:   req.Features.SMS,
			Speed: req.Features.Speed,
		},
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "plan.create", plan.ID)
	return c.JSON(http.StatusCreated, plan)
}

// Update handles PUT /api/plans/update/:id/.
func (h *PlanHandler) Update(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	plan, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	plan.Name = req.Name
	plan.Description = req.Description
	plan.Price = req.Price
	plan.BillingCycle = req.BillingCycle
	plan.Features = domain.PlanFeatures{
		Data:  req.Features.Data,
		Calls: req.Features.Calls,
		SMS:   req.Features.SMS,
		Speed: req.Features.Speed,
	}
	if req.Status != "" {
		plan.Status = req.Status
	}
	plan.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(c.Request().Context(), plan); err != nil {
		return err
	}

	h.enqueueAudit(c, "plan.update", plan.ID)
	return c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /api/plans/delete/:id/.
func (h *PlanHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.repo.FindByID(c.Request().Context(), id); err != nil {
		return err
	}
	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.enqueueAudit(c, "plan.delete", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *PlanHandler) enqueueAudit(c echo.Context, action, entityID string) {
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	h.audit.Enqueue(domain.AuditEvent{
		Actor:     email,
		ActorRole: role,
		Action:    action,
		Entity:    "plan",
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}
