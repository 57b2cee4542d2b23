package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/rs/zerolog"
)

// AccountLookup returns the current flags of an account.
// UserService.AccountStatus satisfies it.
type AccountLookup func(ctx context.Context, userID uint) (models.AccountStatus, error)

// ActiveAccountRequired rejects still-valid tokens of deactivated or
// deleted accounts. It must run after AuthRequired.
func ActiveAccountRequired(lookup AccountLookup, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := httpx.LocalUint(c, "userID")
		if err != nil {
			return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
		}

		status, err := lookup(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return httpx.Unauthorized(c, "unknown_account", "Account not found")
			}
			logger.Error().Err(err).Uint("user_id", userID).Msg("account status lookup failed")
			return httpx.Internal(c, "account_lookup_failed")
		}
		if !status.IsActive {
			return httpx.Forbidden(c, "account_deactivated", "Account is deactivated")
		}

		return c.Next()
	}
}
