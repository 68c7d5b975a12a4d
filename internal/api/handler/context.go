package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: an empty role or user
// id means the middleware did not run or the token carries no identity.
func ctxClaims(c echo.Context) (userID, email, role string, err error) {
	role, _ = c.Get("role").(string)
	userID, _ = c.Get("user_id").(string)
	if role == "" || userID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ = c.Get("email").(string)
	return userID, email, role, nil
}
