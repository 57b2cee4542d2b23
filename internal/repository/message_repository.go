package repository

import (
	"context"

	"github.com/noteduco342/om-receipts/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListDirectIDs returns the ids of direct messages sent by fromUserID to toUserID.
func (r *MessageRepository) ListDirectIDs(fromUserID, toUserID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND group_id IS NULL", fromUserID, toUserID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *MessageRepository) ListGroupIDsUpTo(groupID uint, upToMessageID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Message{}).
		Where("group_id = ? AND id <= ?", groupID, upToMessageID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *MessageRepository) GetLatestGroupMessageID(groupID uint) (uint, error) {
	var latest uint
	err := r.db.Model(&models.Message{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&latest).Error
	return latest, err
}
