package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database that lives for the
// duration of the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixtures seeds rows directly through gorm, bypassing services.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// User creates an active account that shares read receipts.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		PasswordHash:     "hashed_password_123",
		FullName:         username,
		Role:             models.AccountRoleUser,
		IsActive:         true,
		SendReadReceipts: true,
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

func (f *Fixtures) Group(name string, creator *models.User, private bool, members ...*models.User) *models.Group {
	f.t.Helper()
	group := &models.Group{Name: name, CreatorID: creator.ID, IsPrivate: private}
	require.NoError(f.t, f.db.Create(group).Error)

	require.NoError(f.t, f.db.Create(&models.GroupMember{GroupID: group.ID, UserID: creator.ID, Role: models.RoleAdmin}).Error)
	for _, m := range members {
		require.NoError(f.t, f.db.Create(&models.GroupMember{GroupID: group.ID, UserID: m.ID, Role: models.RoleMember}).Error)
	}
	return group
}

func (f *Fixtures) DirectMessage(sender, recipient *models.User, content string) *models.Message {
	f.t.Helper()
	recipientID := recipient.ID
	msg := &models.Message{
		ClientID:    content + "-" + sender.Username,
		SenderID:    sender.ID,
		RecipientID: &recipientID,
		Content:     content,
		MessageType: models.TextMessage,
	}
	require.NoError(f.t, f.db.Create(msg).Error)
	return msg
}

func (f *Fixtures) GroupMessage(sender *models.User, group *models.Group, content string) *models.Message {
	f.t.Helper()
	groupID := group.ID
	msg := &models.Message{
		ClientID:    content + "-" + sender.Username,
		SenderID:    sender.ID,
		GroupID:     &groupID,
		Content:     content,
		MessageType: models.TextMessage,
	}
	require.NoError(f.t, f.db.Create(msg).Error)
	return msg
}

func (f *Fixtures) MarkRead(user *models.User, msg *models.Message) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.ReadMark{MessageID: msg.ID, UserID: user.ID, ReadAt: msg.CreatedAt}).Error)
}

// GetRecordNotFoundError returns the error repositories report for missing rows.
func GetRecordNotFoundError() error {
	return gorm.ErrRecordNotFound
}
