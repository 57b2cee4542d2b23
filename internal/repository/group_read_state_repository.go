package repository

import (
	"time"

	"github.com/noteduco342/om-receipts/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupReadStateRepository struct {
	db *gorm.DB
}

func NewGroupReadStateRepository(db *gorm.DB) *GroupReadStateRepository {
	return &GroupReadStateRepository{db: db}
}

var groupReadStateKey = []clause.Column{{Name: "group_id"}, {Name: "user_id"}}

func (r *GroupReadStateRepository) EnsureForMember(groupID, userID uint) error {
	state := models.GroupReadState{GroupID: groupID, UserID: userID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   groupReadStateKey,
		DoNothing: true,
	}).Create(&state).Error
}

func (r *GroupReadStateRepository) DeleteForMember(groupID, userID uint) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupReadState{}).Error
}

// UpsertMonotonic raises the watermark to lastReadMessageID; a lower value
// leaves the stored row untouched.
func (r *GroupReadStateRepository) UpsertMonotonic(groupID, userID uint, lastReadMessageID uint) error {
	now := time.Now().UTC()
	state := models.GroupReadState{
		GroupID:           groupID,
		UserID:            userID,
		LastReadMessageID: lastReadMessageID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   groupReadStateKey,
		DoUpdates: clause.AssignmentColumns([]string{"last_read_message_id", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("group_read_states.last_read_message_id < excluded.last_read_message_id"),
		}},
	}).Create(&state).Error
}

func (r *GroupReadStateRepository) Get(groupID, userID uint) (*models.GroupReadState, error) {
	var state models.GroupReadState
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}
