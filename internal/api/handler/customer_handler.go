package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// CustomerHandler handles HTTP requests for subscriber records.
type CustomerHandler struct {
	service ports.CustomerService
	audit   ports.AuditSink
}

func NewCustomerHandler(service ports.CustomerService, audit ports.AuditSink) *CustomerHandler {
	return &CustomerHandler{service: service, audit: audit}
}

type addressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type customerRequest struct {
	FirstName   string         `json:"firstName" validate:"required"`
	LastName    string         `json:"lastName" validate:"required"`
	Email       string         `json:"email" validate:"required,email"`
	PhoneNumber string         `json:"phoneNumber"`
	UserID      string         `json:"userId"`
	Address     addressRequest `json:"address"`
	Status      string         `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

type listResponse struct {
	Data  any   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

const defaultPageLimit = 20

func listFilterFrom(c echo.Context) ports.ListFilter {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > 100 {
		limit = 100
	}
	return ports.ListFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	}
}

func (r customerRequest) toInput() ports.CustomerInput {
	return ports.CustomerInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		UserID:      r.UserID,
		Address: domain.Address{
			Street:     r.Address.Street,
			City:       r.Address.City,
			State:      r.Address.State,
			PostalCode: r.Address.PostalCode,
			Country:    r.Address.Country,
		},
		Status: r.Status,
	}
}

// List handles GET /api/customers/all/.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        search  query     string  false  "Partial match on name or email"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listResponse
// @Router       /api/customers/all/ [get]
func (h *CustomerHandler) List(c echo.Context) error {
	filter := listFilterFrom(c)
	customers, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: customers, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// Get handles GET /api/customers/:id/.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  domain.Customer
// @Failure      404  {object}  map[string]string
// @Router       /api/customers/{id}/ [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	customer, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Create handles POST /api/customers/create/.
//
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      customerRequest  true  "Customer details"
// @Success      201   {object}  domain.Customer
// @Failure      400   {object}  map[string]string
// @Router       /api/customers/create/ [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	customer, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "customer.create", customer.ID)
	return c.JSON(http.StatusCreated, customer)
}

// Update handles PUT /api/customers/update/:id/. The local write is
// authoritative; the upstream mirror runs inside the service.
//
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Customer ID"
// @Param        body  body      customerRequest  true  "Customer details"
// @Success      200   {object}  domain.Customer
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/customers/update/{id}/ [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	customer, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "customer.update", customer.ID)
	return c.JSON(http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/delete/:id/.
//
// @Summary      Delete a customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id  path  string  true  "Customer ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/customers/delete/{id}/ [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.enqueueAudit(c, "customer.delete", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHandler) enqueueAudit(c echo.Context, action, entityID string) {
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	h.audit.Enqueue(domain.AuditEvent{
		Actor:     email,
		ActorRole: role,
		Action:    action,
		Entity:    "customer",
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}
