package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/rs/zerolog"
)

type ReadReceiptHandler struct {
	receipts *service.ReadReceiptService
	logger   zerolog.Logger
}

func NewReadReceiptHandler(receipts *service.ReadReceiptService, logger zerolog.Logger) *ReadReceiptHandler {
	return &ReadReceiptHandler{receipts: receipts, logger: logger}
}

// GetReadReceipts handles GET /messages/:message_id/read_receipts.
func (h *ReadReceiptHandler) GetReadReceipts(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, ok := httpx.ParamID(c, "message_id")
	if !ok {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message id")
	}

	userIDs, err := h.receipts.GetReadReceipts(c.UserContext(), userID, messageID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMessage) {
			return httpx.InvalidMessage(c)
		}
		return internalError(c, h.logger, "read_receipts_failed", err)
	}

	return c.JSON(models.ReadReceiptsResponse{UserIDs: userIDs})
}
