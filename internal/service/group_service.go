package service

import (
	"context"
	"errors"
	"strings"

	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/repository"
)

type GroupService struct {
	groupRepo          repository.GroupRepositoryInterface
	groupReadStateRepo repository.GroupReadStateRepositoryInterface
	userRepo           repository.UserRepositoryInterface
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	groupReadStateRepo repository.GroupReadStateRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *GroupService {
	return &GroupService{
		groupRepo:          groupRepo,
		groupReadStateRepo: groupReadStateRepo,
		userRepo:           userRepo,
	}
}

func (s *GroupService) CreateGroup(name, description string, creatorID uint, isPrivate bool) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("group name is required")
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatorID:   creatorID,
		IsPrivate:   isPrivate,
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	// Add creator as admin
	if err := s.groupRepo.AddMember(group.ID, creatorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	s.ensureReadState(group.ID, creatorID)

	return s.GetGroup(group.ID)
}

func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// JoinGroup subscribes the user to a public group.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	if group.IsPrivate {
		return ErrGroupPrivate
	}
	return s.addMember(ctx, groupID, userID, models.RoleMember)
}

// AddMember lets a group admin invite another active user. This is the
// only way into a private group.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID uint) error {
	if _, err := s.GetGroup(groupID); err != nil {
		return err
	}

	role, err := s.groupRepo.GetMemberRole(groupID, actorID)
	if err != nil {
		if isNotFound(err) {
			return ErrForbidden
		}
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbidden
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsActive {
		return ErrUserInactive
	}
	return s.addMember(ctx, groupID, userID, models.RoleMember)
}

func (s *GroupService) addMember(ctx context.Context, groupID, userID uint, role models.GroupRole) error {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return ErrAlreadyMember
	}

	if err := s.groupRepo.AddMember(groupID, userID, role); err != nil {
		return err
	}
	s.ensureReadState(groupID, userID)
	return nil
}

// LeaveGroup drops membership and the read watermark. Read marks already
// written stay, as they do for deactivated users.
func (s *GroupService) LeaveGroup(groupID, userID uint) error {
	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		return err
	}
	if s.groupReadStateRepo != nil {
		_ = s.groupReadStateRepo.DeleteForMember(groupID, userID)
	}
	return nil
}

// GetGroupMembers lists members. Members of a private group are only
// visible to other members.
func (s *GroupService) GetGroupMembers(ctx context.Context, requesterID, groupID uint) ([]models.User, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if group.IsPrivate {
		isMember, err := s.groupRepo.IsMember(ctx, groupID, requesterID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrGroupNotFound
		}
	}
	return s.groupRepo.GetMembers(groupID)
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	return s.groupRepo.GetUserGroups(userID)
}

func (s *GroupService) ensureReadState(groupID, userID uint) {
	if s.groupReadStateRepo == nil {
		return
	}
	_ = s.groupReadStateRepo.EnsureForMember(groupID, userID)
}
