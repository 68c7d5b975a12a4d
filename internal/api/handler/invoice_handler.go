package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for billing invoices.
type InvoiceHandler struct {
	repo      ports.InvoiceRepository
	customers ports.CustomerRepository
	audit     ports.AuditSink
}

func NewInvoiceHandler(repo ports.InvoiceRepository, customers ports.CustomerRepository, audit ports.AuditSink) *InvoiceHandler {
	return &InvoiceHandler{repo: repo, customers: customers, audit: audit}
}

type invoiceItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type invoiceRequest struct {
	CustomerID     string               `json:"customerId" validate:"required"`
	SubscriptionID string               `json:"subscriptionId"`
	Amount         float64              `json:"amount" validate:"gte=0"`
	Status         string               `json:"status" validate:"omitempty,oneof=pending paid overdue cancelled"`
	IssueDate      time.Time            `json:"issueDate"`
	DueDate        time.Time            `json:"dueDate"`
	Items          []invoiceItemRequest `json:"items"`
	PaymentMethod  string               `json:"paymentMethod"`
}

type markPaidRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// List handles GET /api/invoices/.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /api/invoices/ [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	if customerID := c.QueryParam("customerId"); customerID != "" {
		invoices, err := h.repo.ListByCustomer(c.Request().Context(), customerID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, listResponse{Data: invoices, Total: int64(len(invoices))})
	}

	filter := listFilterFrom(c)
	invoices, total, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: invoices, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// Get handles GET /api/invoices/:id/.
func (h *InvoiceHandler) Get(c echo.Context) error {
	invoice, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// Create handles POST /api/invoices/create/. An omitted amount is derived
// from the line items.
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req invoiceRequest
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

	now := time.Now().UTC()
	items := make([]domain.InvoiceItem, 0, len(req.Items))
	var itemTotal float64
	for _, it := range req.Items {
		items = append(items, domain.InvoiceItem{Description: it.Description, Amount: it.Amount})
		itemTotal += it.Amount
	}
	amount := req.Amount
	if amount == 0 {
		amount = itemTotal
	}
	status := req.Status
	if status == "" {
		status = domain.InvoicePending
	}
	issue := req.IssueDate
	if issue.IsZero() {
		issue = now
	}

	invoice, err := h.repo.Create(ctx, &domain.Invoice{
		CustomerID:     req.CustomerID,
		SubscriptionID: req.SubscriptionID,
		Amount:         amount,
		Status:         status,
		IssueDate:      issue,
		DueDate:        req.DueDate,
		Items:          items,
		PaymentMethod:  req.PaymentMethod,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return err
	}

	h.enqueueAudit(c, "invoice.create", invoice.ID)
	return c.JSON(http.StatusCreated, invoice)
}

// MarkPaid handles POST /api/invoices/:id/pay/. A cancelled invoice cannot
// be paid.
func (h *InvoiceHandler) MarkPaid(c echo.Context) error {
	var req markPaidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	invoice, err := h.repo.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if invoice.Status == domain.InvoiceCancelled {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invoice is cancelled"})
	}
	if invoice.Status == domain.InvoicePaid {
		return c.JSON(http.StatusOK, invoice)
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoicePaid
	invoice.PaidDate = &now
	invoice.PaymentMethod = req.PaymentMethod
	invoice.UpdatedAt = now

	if err := h.repo.Update(ctx, invoice); err != nil {
		return err
	}

	h.enqueueAudit(c, "invoice.paid", invoice.ID)
	return c.JSON(http.StatusOK, invoice)
}

// Delete handles DELETE /api/invoices/delete/:id/.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.repo.FindByID(c.Request().Context(), id); err != nil {
		return err
	}
	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.enqueueAudit(c, "invoice.delete", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *InvoiceHandler) enqueueAudit(c echo.Context, action, entityID string) {
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	h.audit.Enqueue(domain.AuditEvent{
		Actor:     email,
		ActorRole: role,
		Action:    action,
		Entity:    "invoice",
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}
