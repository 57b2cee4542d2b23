package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
	FileMessage  MessageType = "file"
)

type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client-side tracking
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"` // UUID for deduplication

	SenderID    uint   `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender      User   `gorm:"foreignKey:SenderID" json:"sender"`
	RecipientID *uint  `gorm:"index" json:"recipient_id"` // null for group messages
	GroupID     *uint  `gorm:"index" json:"group_id"`     // null for direct messages
	Group       *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`

	Content     string      `gorm:"type:text;not null" json:"content"`
	MessageType MessageType `gorm:"type:varchar(20);default:'text'" json:"message_type"`
}

func (m *Message) IsDirect() bool {
	return m.GroupID == nil
}

type MessageResponse struct {
	ID          uint         `json:"id"`
	ClientID    string       `json:"client_id"`
	SenderID    uint         `json:"sender_id"`
	Sender      UserResponse `json:"sender"`
	RecipientID *uint        `json:"recipient_id"`
	GroupID     *uint        `json:"group_id"`
	Content     string       `json:"content"`
	MessageType MessageType  `json:"message_type"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		SenderID:    m.SenderID,
		Sender:      m.Sender.ToResponse(),
		RecipientID: m.RecipientID,
		GroupID:     m.GroupID,
		Content:     m.Content,
		MessageType: m.MessageType,
		CreatedAt:   m.CreatedAt,
	}
}
