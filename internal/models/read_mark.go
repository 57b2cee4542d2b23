package models

import "time"

// ReadMark records that a user has read a message. Rows are only ever
// inserted; the pair (message_id, user_id) is unique, so marking twice is
// a no-op.
type ReadMark struct {
	MessageID uint      `gorm:"primaryKey;autoIncrement:false" json:"message_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	ReadAt    time.Time `gorm:"not null" json:"read_at"`
}

// ReadReceiptsResponse is the body of GET /messages/:message_id/read_receipts.
type ReadReceiptsResponse struct {
	UserIDs []uint `json:"user_ids"`
}
