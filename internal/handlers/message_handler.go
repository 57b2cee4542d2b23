package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/noteduco342/om-receipts/internal/validation"
	"github.com/rs/zerolog"
)

type MessageHandler struct {
	messageService *service.MessageService
	logger         zerolog.Logger
}

func NewMessageHandler(messageService *service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		logger:         logger,
	}
}

type UpdateFlagsRequest struct {
	Messages []uint `json:"messages"`
	Op       string `json:"op"`
	Flag     string `json:"flag"`
}

type MarkGroupReadRequest struct {
	LastReadMessageID uint `json:"last_read_message_id"`
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Content = validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if input.Content == "" {
		return httpx.BadRequest(c, "missing_content", "Content is required")
	}
	if input.RecipientID == nil || *input.RecipientID == 0 {
		return httpx.BadRequest(c, "missing_recipient", "recipient_id is required")
	}

	message, err := h.messageService.SendMessage(c.UserContext(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecipient) {
			return httpx.BadRequest(c, "invalid_recipient", "Invalid recipient")
		}
		return internalError(c, h.logger, "send_message_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, ok := httpx.ParamID(c, "message_id")
	if !ok {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message id")
	}

	message, err := h.messageService.GetMessage(c.UserContext(), userID, messageID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMessage) {
			return httpx.InvalidMessage(c)
		}
		return internalError(c, h.logger, "fetch_message_failed", err)
	}

	return c.JSON(message.ToResponse())
}

// UpdateFlags handles POST /messages/flags. Only {"op":"add","flag":"read"}
// is supported.
func (h *MessageHandler) UpdateFlags(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req UpdateFlagsRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if len(req.Messages) == 0 {
		return httpx.BadRequest(c, "missing_messages", "messages is required")
	}

	ids, err := h.messageService.UpdateReadFlags(c.UserContext(), userID, req.Messages, req.Op, req.Flag)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMessage):
			return httpx.InvalidMessage(c)
		case errors.Is(err, service.ErrUnsupportedFlag):
			return httpx.BadRequest(c, "invalid_flag", "Invalid flag")
		case errors.Is(err, service.ErrUnsupportedFlagOp):
			return httpx.BadRequest(c, "invalid_flag_op", "Invalid message flag operation")
		}
		return internalError(c, h.logger, "update_flags_failed", err)
	}

	return c.JSON(fiber.Map{"messages": ids})
}

func (h *MessageHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	peerID, ok := httpx.ParamID(c, "peer_id")
	if !ok || peerID == 0 {
		return httpx.BadRequest(c, "invalid_peer_id", "Invalid peer id")
	}

	count, err := h.messageService.MarkConversationRead(c.UserContext(), userID, peerID)
	if err != nil {
		return internalError(c, h.logger, "mark_read_failed", err)
	}

	return c.JSON(fiber.Map{"marked": count})
}

func (h *MessageHandler) SendGroupMessage(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Content = validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if input.Content == "" {
		return httpx.BadRequest(c, "missing_content", "Content is required")
	}
	input.RecipientID = nil

	message, err := h.messageService.SendGroupMessage(c.UserContext(), userID, groupID, input)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			return httpx.Forbidden(c, "not_group_member", "Not a member of this group")
		}
		return internalError(c, h.logger, "send_message_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) MarkGroupRead(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	var req MarkGroupReadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
		}
	}

	last, err := h.messageService.MarkGroupRead(c.UserContext(), userID, groupID, req.LastReadMessageID)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			return httpx.Forbidden(c, "not_group_member", "Not a member of this group")
		}
		return internalError(c, h.logger, "mark_read_failed", err)
	}

	return c.JSON(fiber.Map{"last_read_message_id": last})
}

func (h *MessageHandler) GetGroupReadState(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	state, err := h.messageService.GetGroupReadState(c.UserContext(), userID, groupID)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			return httpx.Forbidden(c, "not_group_member", "Not a member of this group")
		}
		return internalError(c, h.logger, "fetch_read_state_failed", err)
	}

	return c.JSON(state)
}
