package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/abdbodara/taskora-backend/internal/constants"
	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/repository"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrCannotDeleteSelf         = errors.New("you cannot delete your own account")
	ErrCurrentPasswordRequired  = errors.New("current password is required to set a new password")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
)

// UserService handles user profile and administration logic
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput represents a self-service profile update
type UpdateProfileInput struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// UpdateUserInput represents an admin-side user update
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password string
}

// GetProfile returns a user with its technicians and tasks attached
func (s *UserService) GetProfile(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, "Technicians", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfile applies a self-service update. A new password requires the
// current one to match first.
func (s *UserService) UpdateProfile(id uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return nil, ErrCurrentPasswordIncorrect
		}
		if len(input.NewPassword) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.applyIdentity(user, input.Name, input.Email); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// List returns a page of users with their technicians and tasks attached
func (s *UserService) List(search string, page, limit int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(repository.UserFilter{
		Search: search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Get returns a user by id
func (s *UserService) Get(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, "Technicians", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Update applies an admin-side update to a user
func (s *UserService) Update(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Password != "" {
		if len(input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.applyIdentity(user, input.Name, input.Email); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes a user. Self-deletion is rejected; owned technicians and
// tasks are left in place.
func (s *UserService) Delete(id, actorID uint64) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// applyIdentity sets name/email when provided, guarding email uniqueness
func (s *UserService) applyIdentity(user *models.User, name, email *string) error {
	if name != nil && *name != "" {
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil && *email != "" {
		normalized := strings.ToLower(strings.TrimSpace(*email))
		if normalized != user.Email {
			if existing, err := s.userRepo.FindByEmail(normalized); err == nil && existing.ID != user.ID {
				return ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = normalized
		}
	}
	return nil
}
