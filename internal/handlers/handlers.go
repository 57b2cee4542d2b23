package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/rs/zerolog"
)

// internalError logs err with the request id and returns a generic 500.
func internalError(c *fiber.Ctx, logger zerolog.Logger, code string, err error) error {
	logger.Error().
		Err(err).
		Str("code", code).
		Str("path", c.Path()).
		Str("request_id", httpx.RequestID(c)).
		Msg("request failed")
	return httpx.Internal(c, code)
}

func currentUser(c *fiber.Ctx) (uint, bool) {
	userID, err := httpx.LocalUint(c, "userID")
	return userID, err == nil
}
