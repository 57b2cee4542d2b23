package service

import (
	"context"
	"strings"

	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/repository"
)

// AccountStatusCache is satisfied by *cache.AccountCache.
type AccountStatusCache interface {
	Get(ctx context.Context, userID uint) (models.AccountStatus, bool)
	Set(ctx context.Context, status models.AccountStatus) error
	Invalidate(ctx context.Context, userID uint) error
}

type UserService struct {
	userRepo     repository.UserRepositoryInterface
	accountCache AccountStatusCache
}

func NewUserService(userRepo repository.UserRepositoryInterface, accountCache AccountStatusCache) *UserService {
	return &UserService{userRepo: userRepo, accountCache: accountCache}
}

// UpdateSettingsInput uses pointers so omitted fields stay unchanged.
type UpdateSettingsInput struct {
	SendReadReceipts *bool   `json:"send_read_receipts"`
	FullName         *string `json:"full_name"`
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []models.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.SearchUsers(query, limit)
}

func (s *UserService) UpdateSettings(ctx context.Context, userID uint, input UpdateSettingsInput) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		if err := s.userRepo.SetFullName(userID, fullName); err != nil {
			return nil, err
		}
		user.FullName = fullName
	}

	if input.SendReadReceipts != nil {
		if err := s.userRepo.SetSendReadReceipts(userID, *input.SendReadReceipts); err != nil {
			return nil, err
		}
		user.SendReadReceipts = *input.SendReadReceipts
		s.invalidate(ctx, userID)
	}

	return user, nil
}

// Deactivate hides the user from read receipts and blocks their sessions.
// Their read marks are kept, so Reactivate restores them.
func (s *UserService) Deactivate(ctx context.Context, userID uint) (*models.User, error) {
	return s.setActive(ctx, userID, false)
}

func (s *UserService) Reactivate(ctx context.Context, userID uint) (*models.User, error) {
	return s.setActive(ctx, userID, true)
}

func (s *UserService) setActive(ctx context.Context, userID uint, active bool) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetActive(userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active
	s.invalidate(ctx, userID)
	return user, nil
}

// AccountStatus returns the activation and privacy flags of a user,
// served from the cache when possible.
func (s *UserService) AccountStatus(ctx context.Context, userID uint) (models.AccountStatus, error) {
	if s.accountCache != nil {
		if status, ok := s.accountCache.Get(ctx, userID); ok {
			return status, nil
		}
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return models.AccountStatus{}, err
	}
	status := user.Status()
	if s.accountCache != nil {
		_ = s.accountCache.Set(ctx, status)
	}
	return status, nil
}

func (s *UserService) invalidate(ctx context.Context, userID uint) {
	if s.accountCache == nil {
		return
	}
	_ = s.accountCache.Invalidate(ctx, userID)
}
