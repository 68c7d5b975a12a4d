package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

// UserHandler handles account administration. Role assignments are lowercased
// before persistence so the stored role is always canonical.
type UserHandler struct {
	repo  ports.UserRepository
	audit ports.AuditSink
}

func NewUserHandler(repo ports.UserRepository, audit ports.AuditSink) *UserHandler {
	return &UserHandler{repo: repo, audit: audit}
}

type updateUserRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	PhoneNumber  string `json:"phoneNumber"`
	ProfileImage string `json:"profileImage"`
	Role         string `json:"role"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// List handles GET /api/users/.
//
// @Summary      List user accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /api/users/ [get]
func (h *UserHandler) List(c echo.Context) error {
	filter := listFilterFrom(c)
	users, total, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Data: users, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// Get handles GET /api/users/:id/.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/users/:id/update/.
//
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Account fields"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/{id}/update/ [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	user, err := h.repo.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	user.ProfileImage = req.ProfileImage
	if req.Role != "" {
		role := strings.ToLower(req.Role)
		if !domain.IsValidRole(role) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown role"})
		}
		user.Role = role
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(ctx, user); err != nil {
		return err
	}

	h.enqueueAudit(c, "user.update", user.ID)
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id/delete/. Restricted to the top role
// at the routing layer.
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.repo.FindByID(c.Request().Context(), id); err != nil {
		return err
	}
	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.enqueueAudit(c, "user.delete", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) enqueueAudit(c echo.Context, action, entityID string) {
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	h.audit.Enqueue(domain.AuditEvent{
		Actor:     email,
		ActorRole: role,
		Action:    action,
		Entity:    "user",
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}
