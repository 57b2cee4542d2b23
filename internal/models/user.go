package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AccountRoleUser  = "user"
	AccountRoleAdmin = "admin"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `json:"full_name"`
	Role         string `gorm:"not null;default:user" json:"role"`

	// Account lifecycle and privacy. Both are applied when read receipts
	// are rendered, never when read marks are written.
	IsActive         bool `gorm:"not null;default:true;index:idx_users_receipt_filter,priority:1" json:"is_active"`
	SendReadReceipts bool `gorm:"not null;default:true;index:idx_users_receipt_filter,priority:2" json:"send_read_receipts"`

	Messages []Message `gorm:"foreignKey:SenderID" json:"-"`
}

type UserResponse struct {
	ID               uint   `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	IsActive         bool   `json:"is_active"`
	SendReadReceipts bool   `json:"send_read_receipts"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FullName:         u.FullName,
		Role:             u.Role,
		IsActive:         u.IsActive,
		SendReadReceipts: u.SendReadReceipts,
	}
}

// AccountStatus is the slice of a user that request middleware and the
// account cache care about.
type AccountStatus struct {
	UserID           uint `msgpack:"u"`
	IsActive         bool `msgpack:"a"`
	SendReadReceipts bool `msgpack:"r"`
}

func (u *User) Status() AccountStatus {
	return AccountStatus{
		UserID:           u.ID,
		IsActive:         u.IsActive,
		SendReadReceipts: u.SendReadReceipts,
	}
}
