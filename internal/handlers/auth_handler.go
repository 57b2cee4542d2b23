package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/noteduco342/om-receipts/internal/validation"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if !validation.ValidateEmail(validation.NormalizeEmail(input.Email)) {
		return httpx.BadRequest(c, "invalid_email", "Invalid email")
	}
	if !validation.ValidateUsername(input.Username) {
		return httpx.BadRequest(c, "invalid_username", "Invalid username")
	}
	if !validation.ValidatePassword(input.Password) {
		return httpx.BadRequest(c, "weak_password", "Password is too short")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return httpx.Conflict(c, "email_taken", "Email already exists")
		case errors.Is(err, service.ErrUsernameTaken):
			return httpx.Conflict(c, "username_taken", "Username already exists")
		}
		return internalError(c, h.logger, "register_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_credentials", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return httpx.Unauthorized(c, "invalid_credentials", "Invalid email or password")
		case errors.Is(err, service.ErrUserInactive):
			return httpx.Forbidden(c, "account_deactivated", "Account is deactivated")
		}
		return internalError(c, h.logger, "login_failed", err)
	}

	return c.JSON(result)
}
