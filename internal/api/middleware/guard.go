package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// SessionCookieName is the cookie carrying the server-side session ID for
// the navigation routes.
const SessionCookieName = "crm_session"

// RedirectGuard protects a role-scoped navigation tree. Visitors without a
// live session are sent to the login page; authenticated visitors of the
// wrong role are sent to their own dashboard instead of seeing an error.
// More privileged roles pass through to less privileged trees unchanged.
func RedirectGuard(resolver ports.SessionResolver, requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			view := resolveSession(c, resolver)
			decision := domain.Authorize(view.IsAuthenticated, view.Role, requiredRole)
			if !decision.Allowed {
				return c.Redirect(http.StatusSeeOther, decision.Redirect)
			}
			c.Set("role", view.Role)
			return next(c)
		}
	}
}

// RequireRole enforces role access on the data plane. Unlike RedirectGuard it
// answers with JSON: API clients get a 403 envelope, not a redirect. The role
// must already be in context, so it runs after Auth.
func RequireRole(requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			decision := domain.Authorize(true, domain.NormalizeRole(role), requiredRole)
			if !decision.Allowed {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

func resolveSession(c echo.Context, resolver ports.SessionResolver) ports.SessionView {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ports.SessionView{}
	}
	return resolver.Resolve(c.Request().Context(), cookie.Value)
}
