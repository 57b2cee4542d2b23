package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/httpx"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/rs/zerolog"
)

type GroupHandler struct {
	groupService *service.GroupService
	logger       zerolog.Logger
}

func NewGroupHandler(groupService *service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, logger: logger}
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

type AddMemberRequest struct {
	UserID uint `json:"user_id"`
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Group name is required")
	}

	group, err := h.groupService.CreateGroup(req.Name, req.Description, userID, req.IsPrivate)
	if err != nil {
		return internalError(c, h.logger, "create_group_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		return internalError(c, h.logger, "fetch_groups_failed", err)
	}

	return c.JSON(groups)
}

func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	if err := h.groupService.JoinGroup(c.UserContext(), groupID, userID); err != nil {
		return h.groupError(c, err, "join_group_failed")
	}

	return c.JSON(fiber.Map{"message": "Joined group successfully"})
}

// AddMember lets a group admin add another user.
func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	if err := h.groupService.AddMember(c.UserContext(), userID, groupID, req.UserID); err != nil {
		return h.groupError(c, err, "add_member_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Member added"})
}

func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	if err := h.groupService.LeaveGroup(groupID, userID); err != nil {
		return internalError(c, h.logger, "leave_group_failed", err)
	}

	return c.JSON(fiber.Map{"message": "Left group successfully"})
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group id")
	}

	members, err := h.groupService.GetGroupMembers(c.UserContext(), userID, groupID)
	if err != nil {
		return h.groupError(c, err, "fetch_members_failed")
	}

	responses := make([]models.UserResponse, len(members))
	for i, m := range members {
		responses[i] = m.ToResponse()
	}
	return c.JSON(fiber.Map{"members": responses})
}

func (h *GroupHandler) groupError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return httpx.NotFound(c, "group_not_found", "Group not found")
	case errors.Is(err, service.ErrUserNotFound):
		return httpx.NotFound(c, "user_not_found", "User not found")
	case errors.Is(err, service.ErrGroupPrivate):
		return httpx.Forbidden(c, "group_private", "Group is private")
	case errors.Is(err, service.ErrForbidden):
		return httpx.Forbidden(c, "forbidden", "Only group admins can add members")
	case errors.Is(err, service.ErrUserInactive):
		return httpx.BadRequest(c, "user_inactive", "User is deactivated")
	case errors.Is(err, service.ErrAlreadyMember):
		return httpx.Conflict(c, "already_member", "Already a member of this group")
	}
	return internalError(c, h.logger, code, err)
}
