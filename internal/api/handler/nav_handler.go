package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/api/middleware"
	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// NavHandler serves the navigation plane: the role-scoped page endpoints the
// web client drives, plus the entry and fallback redirects. Page endpoints
// answer with a small descriptor; the guard middleware has already decided
// access by the time one runs.
type NavHandler struct {
	resolver ports.SessionResolver
}

func NewNavHandler(resolver ports.SessionResolver) *NavHandler {
	return &NavHandler{resolver: resolver}
}

type pageResponse struct {
	Section string `json:"section"`
	Role    string `json:"role"`
}

// Page returns a handler describing one section of a role tree.
func (h *NavHandler) Page(role, section string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, pageResponse{Section: section, Role: role})
	}
}

// Root handles GET /: visitors land on their own dashboard, strangers on the
// login page.
func (h *NavHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, h.landingPath(c))
}

// LegacyRole handles the /null and /undefined trees. A client that ever
// persisted a broken role value navigates here; both resolve to the basic
// dashboard rather than an error page.
func (h *NavHandler) LegacyRole(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, domain.DashboardPath(domain.RoleUser))
}

// Fallback is the catch-all for unknown paths.
func (h *NavHandler) Fallback(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, h.landingPath(c))
}

// Login handles GET /login. It only confirms the page exists; authentication
// happens against /auth/login.
func (h *NavHandler) Login(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{Section: "login"})
}

func (h *NavHandler) landingPath(c echo.Context) string {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "/login"
	}
	view := h.resolver.Resolve(c.Request().Context(), cookie.Value)
	if !view.IsAuthenticated {
		return "/login"
	}
	return domain.DashboardPath(view.Role)
}
