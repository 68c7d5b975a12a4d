package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/ports"
)

// DashboardHandler serves the aggregate blocks behind the dashboards and the
// audit log listing.
type DashboardHandler struct {
	service     ports.DashboardService
	provisioner ports.ProvisionService
	auditLog    ports.AuditRepository
	log         zerolog.Logger
}

func NewDashboardHandler(service ports.DashboardService, provisioner ports.ProvisionService, auditLog ports.AuditRepository, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, provisioner: provisioner, auditLog: auditLog, log: log}
}

// AdminStats handles GET /api/dashboard/admin/.
//
// @Summary      Admin dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.AdminStats
// @Router       /api/dashboard/admin/ [get]
func (h *DashboardHandler) AdminStats(c echo.Context) error {
	stats, err := h.service.AdminStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// UserStats handles GET /api/dashboard/me/. A visitor without a customer
// record gets one provisioned on the way in; provisioning failure degrades
// to an empty dashboard rather than an error.
//
// @Summary      Per-user dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.UserStats
// @Router       /api/dashboard/me/ [get]
func (h *DashboardHandler) UserStats(c echo.Context) error {
	userID, _, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if sessionID, ok := c.Get("session_id").(string); ok && sessionID != "" {
		if _, err := h.provisioner.EnsureCustomerExists(c.Request().Context(), sessionID); err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("customer provisioning failed at dashboard")
		}
	}

	stats, err := h.service.UserStats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// UserStatsByID handles GET /api/dashboard/user/:id/ for support staff
// looking at someone else's dashboard.
func (h *DashboardHandler) UserStatsByID(c echo.Context) error {
	stats, err := h.service.UserStats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// AuditLog handles GET /api/audit-logs/.
//
// @Summary      List audit events
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /api/audit-logs/ [get]
func (h *DashboardHandler) AuditLog(c echo.Context) error {
	filter := listFilterFrom(c)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxAuditPage {
		filter.Limit = maxAuditPage
	}
	events, total, err := h.auditLog.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: events, Total: total, Page: filter.Page, Limit: filter.Limit})
}

const maxAuditPage = 200
