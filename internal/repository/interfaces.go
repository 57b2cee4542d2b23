package repository

import (
	"context"

	"github.com/noteduco342/om-receipts/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	SetFullName(userID uint, fullName string) error
	SetActive(userID uint, active bool) error
	SetSendReadReceipts(userID uint, enabled bool) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	ListDirectIDs(fromUserID, toUserID uint) ([]uint, error)
	ListGroupIDsUpTo(groupID uint, upToMessageID uint) ([]uint, error)
	GetLatestGroupMessageID(groupID uint) (uint, error)
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	AddMember(groupID, userID uint, role models.GroupRole) error
	RemoveMember(groupID, userID uint) error
	GetMembers(groupID uint) ([]models.User, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	IsPrivate(ctx context.Context, groupID uint) (bool, error)
	GetMemberRole(groupID, userID uint) (models.GroupRole, error)
	GetUserGroups(userID uint) ([]models.Group, error)
}

// ReadMarkRepositoryInterface defines the contract for per-user read marks
type ReadMarkRepositoryInterface interface {
	MarkRead(ctx context.Context, userID uint, messageIDs []uint) error
	ListReaderIDs(ctx context.Context, messageID uint, excludeUserID uint) ([]uint, error)
}

// GroupReadStateRepositoryInterface defines the contract for group read state operations
type GroupReadStateRepositoryInterface interface {
	EnsureForMember(groupID, userID uint) error
	DeleteForMember(groupID, userID uint) error
	UpsertMonotonic(groupID, userID uint, lastReadMessageID uint) error
	Get(groupID, userID uint) (*models.GroupReadState, error)
}
