package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrInvalidMessage covers both a missing message and one the requester
	// may not see. Callers must not be able to tell the two apart.
	ErrInvalidMessage = errors.New("invalid message")

	ErrUnsupportedFlag   = errors.New("unsupported message flag")
	ErrUnsupportedFlagOp = errors.New("unsupported flag operation")
	ErrInvalidRecipient  = errors.New("invalid recipient")

	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupPrivate   = errors.New("group is private")
	ErrNotGroupMember = errors.New("not a member of this group")
	ErrAlreadyMember  = errors.New("user is already a member of this group")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
