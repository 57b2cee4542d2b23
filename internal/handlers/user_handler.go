package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/noteduco342/om-receipts/internal/validation"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

func NewUserHandler(userService *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetCurrentUser gets the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
		}
		return internalError(c, h.logger, "fetch_user_failed", err)
	}

	// ETag allows clients to re-check frequently without re-downloading.
	etag := fmt.Sprintf("W/\"u-%d-%d\"", user.ID, user.UpdatedAt.UTC().UnixNano())
	c.Set("ETag", etag)
	c.Set("Cache-Control", "private, max-age=0, must-revalidate")

	if inm := strings.TrimSpace(c.Get("If-None-Match")); inm != "" {
		inmNorm := strings.Trim(strings.TrimPrefix(inm, "W/"), "\"")
		etagNorm := strings.Trim(strings.TrimPrefix(etag, "W/"), "\"")
		if strings.Contains(inmNorm, etagNorm) {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}

// UpdateSettings handles PATCH /users/me/settings.
func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.UpdateSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.SendReadReceipts == nil && input.FullName == nil {
		return httpx.BadRequest(c, "empty_settings", "No settings to update")
	}
	if input.FullName != nil {
		name := validation.TrimAndLimit(*input.FullName, 80)
		input.FullName = &name
	}

	user, err := h.userService.UpdateSettings(c.UserContext(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
		}
		return internalError(c, h.logger, "update_settings_failed", err)
	}

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}

// SearchUsers searches active users by username
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return httpx.BadRequest(c, "missing_query", "Search query is required")
	}

	users, err := h.userService.SearchUsers(query, c.QueryInt("limit", 20))
	if err != nil {
		return internalError(c, h.logger, "search_users_failed", err)
	}

	responses := make([]models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	return c.JSON(fiber.Map{
		"users": responses,
	})
}

// Deactivate handles POST /users/:id/deactivate (admin only).
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

// Reactivate handles POST /users/:id/reactivate (admin only).
func (h *UserHandler) Reactivate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *UserHandler) setActive(c *fiber.Ctx, active bool) error {
	actorID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	targetID, ok := httpx.ParamID(c, "id")
	if !ok || targetID == 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}
	if !active && targetID == actorID {
		return httpx.BadRequest(c, "cannot_deactivate_self", "Cannot deactivate your own account")
	}

	var (
		user *models.User
		err  error
	)
	if active {
		user, err = h.userService.Reactivate(c.UserContext(), targetID)
	} else {
		user, err = h.userService.Deactivate(c.UserContext(), targetID)
	}
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return httpx.NotFound(c, "user_not_found", "User not found")
		}
		return internalError(c, h.logger, "update_account_failed", err)
	}

	h.logger.Info().
		Uint("actor_id", actorID).
		Uint("user_id", targetID).
		Bool("active", active).
		Msg("account status changed")

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}
