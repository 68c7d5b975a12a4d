package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// TicketHandler handles HTTP requests for the support ticket lifecycle.
// Routes address tickets by their human-facing id (TK-…), never the storage
// id.
type TicketHandler struct {
	service ports.TicketService
	audit   ports.AuditSink
}

func NewTicketHandler(service ports.TicketService, audit ports.AuditSink) *TicketHandler {
	return &TicketHandler{service: service, audit: audit}
}

type createTicketRequest struct {
	CustomerID  string `json:"customerId" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    string `json:"category"`
}

type updateTicketStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
	AssignedTo string `json:"assignedTo"`
}

type ticketMessageRequest struct {
	Sender  string `json:"sender" validate:"required,oneof=customer support"`
	Message string `json:"message" validate:"required"`
}

// List handles GET /api/tickets/.
//
// @Summary      List support tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /api/tickets/ [get]
func (h *TicketHandler) List(c echo.Context) error {
	filter := listFilterFrom(c)
	tickets, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: tickets, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// Get handles GET /api/tickets/:ticket_id/.
func (h *TicketHandler) Get(c echo.Context) error {
	ticket, err := h.service.Get(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticket)
}

// Create handles POST /api/tickets/create/.
//
// @Summary      Open a support ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTicketRequest  true  "Ticket details"
// @Success      201   {object}  domain.SupportTicket
// @Failure      400   {object}  map[string]string
// @Router       /api/tickets/create/ [post]
func (h *TicketHandler) Create(c echo.Context) error {
	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ticket, err := h.service.Create(c.Request().Context(), ports.TicketInput{
		CustomerID:  req.CustomerID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "ticket.create", ticket.TicketID)
	return c.JSON(http.StatusCreated, ticket)
}

// UpdateStatus handles PUT /api/tickets/:ticket_id/status/. Illegal
// lifecycle moves come back as 422.
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	var req updateTicketStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ticket, err := h.service.UpdateStatus(c.Request().Context(), c.Param("ticket_id"), domain.TicketStatus(req.Status), req.AssignedTo)
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "ticket.status."+req.Status, ticket.TicketID)
	return c.JSON(http.StatusOK, ticket)
}

// AddMessage handles POST /api/tickets/:ticket_id/messages/.
func (h *TicketHandler) AddMessage(c echo.Context) error {
	var req ticketMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, _ := c.Get("user_id").(string)
	ticketID := c.Param("ticket_id")
	msg := domain.TicketMessage{
		Sender:    req.Sender,
		SenderID:  userID,
		Message:   req.Message,
		Timestamp: time.Now().UTC(),
	}
	if err := h.service.AddMessage(c.Request().Context(), ticketID, msg); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *TicketHandler) enqueueAudit(c echo.Context, action, entityID string) {
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	h.audit.Enqueue(domain.AuditEvent{
		Actor:     email,
		ActorRole: role,
		Action:    action,
		Entity:    "ticket",
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}
