package models

import (
	"time"
)

// GroupReadState is the per-member read watermark of a group.
// LastReadMessageID only moves forward; every group message at or below it
// has a ReadMark for the member.
type GroupReadState struct {
	GroupID           uint      `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	UserID            uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	LastReadMessageID uint      `gorm:"not null;default:0" json:"last_read_message_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
