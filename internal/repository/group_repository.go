package repository

import (
	"context"

	"github.com/noteduco342/om-receipts/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// FindByID loads a group with its creator for API responses. Access checks
// use IsPrivate instead.
func (r *GroupRepository) FindByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.Preload("Creator").First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// IsPrivate reads only the visibility flag of a group. A missing or
// soft-deleted group is gorm.ErrRecordNotFound.
func (r *GroupRepository) IsPrivate(ctx context.Context, groupID uint) (bool, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Select("id", "is_private").
		First(&group, groupID).Error
	if err != nil {
		return false, err
	}
	return group.IsPrivate, nil
}

func (r *GroupRepository) AddMember(groupID, userID uint, role models.GroupRole) error {
	return r.db.Create(&models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	}).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID uint) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{}).Error
}

// GetMembers returns members ordered by user id, including deactivated ones.
func (r *GroupRepository) GetMembers(groupID uint) ([]models.User, error) {
	var members []models.User
	err := r.db.Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("users.id").
		Find(&members).Error
	return members, err
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) GetMemberRole(groupID, userID uint) (models.GroupRole, error) {
	var member models.GroupMember
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		return "", err
	}
	return member.Role, nil
}

// GetUserGroups lists the groups a user belongs to, oldest first.
func (r *GroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.id").
		Preload("Creator").
		Find(&groups).Error
	return groups, err
}
