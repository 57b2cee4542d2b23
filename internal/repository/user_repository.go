package repository

import (
	"github.com/noteduco342/om-receipts/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// The setters below each write a single column. Saving a whole loaded row
// would overwrite flags changed by a concurrent request, and a zero value
// must be stored rather than skipped.

func (r *UserRepository) SetFullName(userID uint, fullName string) error {
	return r.updateColumn(userID, "full_name", fullName)
}

func (r *UserRepository) SetActive(userID uint, active bool) error {
	return r.updateColumn(userID, "is_active", active)
}

func (r *UserRepository) SetSendReadReceipts(userID uint, enabled bool) error {
	return r.updateColumn(userID, "send_read_receipts", enabled)
}

func (r *UserRepository) updateColumn(userID uint, column string, value interface{}) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var users []models.User

	// Search by username or full name (case insensitive)
	err := r.db.Where("is_active = ?", true).
		Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", "%"+query+"%", "%"+query+"%").
		Order("id").
		Limit(limit).
		Find(&users).Error

	return users, err
}
