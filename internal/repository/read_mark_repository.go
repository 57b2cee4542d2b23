package repository

import (
	"context"
	"time"

	"github.com/noteduco342/om-receipts/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const readMarkBatchSize = 500

type ReadMarkRepository struct {
	db *gorm.DB
}

func NewReadMarkRepository(db *gorm.DB) *ReadMarkRepository {
	return &ReadMarkRepository{db: db}
}

// MarkRead inserts a read mark for every message id. Existing marks keep
// their original read_at.
func (r *ReadMarkRepository) MarkRead(ctx context.Context, userID uint, messageIDs []uint) error {
	if len(messageIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	marks := make([]models.ReadMark, 0, len(messageIDs))
	for _, id := range messageIDs {
		marks = append(marks, models.ReadMark{MessageID: id, UserID: userID, ReadAt: now})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		CreateInBatches(&marks, readMarkBatchSize).Error
}

// ListReaderIDs returns the ids of users who read the message, restricted
// to active accounts that share read receipts, minus excludeUserID.
func (r *ReadMarkRepository) ListReaderIDs(ctx context.Context, messageID uint, excludeUserID uint) ([]uint, error) {
	userIDs := make([]uint, 0)
	err := r.db.WithContext(ctx).
		Model(&models.ReadMark{}).
		Joins("JOIN users ON users.id = read_marks.user_id").
		Where("read_marks.message_id = ?", messageID).
		Where("users.is_active = ? AND users.send_read_receipts = ?", true, true).
		Where("users.deleted_at IS NULL").
		Where("read_marks.user_id <> ?", excludeUserID).
		Order("read_marks.user_id").
		Pluck("read_marks.user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
