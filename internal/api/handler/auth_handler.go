package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/api/metrics"
	"github.com/telcocrm/crm-system/internal/api/middleware"
	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	provisioner ports.ProvisionService
	audit       ports.AuditSink
	sessionTTL  time.Duration
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, provisioner ports.ProvisionService, audit ports.AuditSink, sessionTTL time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		provisioner: provisioner,
		audit:       audit,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type authResponse struct {
	Token      string       `json:"token,omitempty"`
	User       *domain.User `json:"user,omitempty"`
	CustomerID string       `json:"customerId,omitempty"`
}

// Login authenticates a user, establishes the server session and returns a
// JWT token. Customer provisioning runs inline but never fails the login.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("unknown", "failed").Inc()
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	metrics.LoginsTotal.WithLabelValues(result.Session.Role, "ok").Inc()

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Session.ID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	customerID, err := h.provisioner.EnsureCustomerExists(c.Request().Context(), result.Session.ID)
	if err != nil {
		// Provisioning never blocks a sign-in.
		metrics.CustomersProvisionedTotal.WithLabelValues("error").Inc()
		h.log.Warn().Err(err).Str("email", req.Email).Msg("customer provisioning failed at login")
	}

	h.audit.Enqueue(domain.AuditEvent{
		Actor:     result.User.Email,
		ActorRole: result.Session.Role,
		Action:    "user.login",
		Entity:    "user",
		EntityID:  result.User.ID,
		Timestamp: time.Now().UTC(),
	})

	return c.JSON(http.StatusOK, authResponse{Token: result.Token, User: result.User, CustomerID: customerID})
}

// Register creates a new end-user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName, req.PhoneNumber)
	if err != nil {
		if err == domain.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": "user already exists"})
		}
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Logout tears the session down and sends the visitor back to the login page.
// The session store clear and the cookie expiry happen together so neither a
// stale cookie nor a stale server record can keep the identity alive.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("session clear failed at logout")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusSeeOther, "/login")
}

// ForgotPassword issues a reset token. The response is identical for known
// and unknown accounts.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "reset requested"})
}

// ResetPassword completes the reset flow with a previously issued token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid or expired token"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "password updated"})
}
