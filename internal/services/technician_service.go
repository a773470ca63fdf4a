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
	ErrTechnicianNotFound   = errors.New("technician not found or access denied")
	ErrTechnicianEmailTaken = errors.New("a technician with this email already exists in your contacts")
)

// TechnicianService handles technician business logic
type TechnicianService struct {
	technicianRepo repository.TechnicianRepository
}

// NewTechnicianService creates a new TechnicianService
func NewTechnicianService(technicianRepo repository.TechnicianRepository) *TechnicianService {
	return &TechnicianService{technicianRepo: technicianRepo}
}

// ListTechniciansInput represents filters for the technician listing
type ListTechniciansInput struct {
	OwnerID uint64
	Search  string
	Status  *models.TechnicianStatus
	Page    int
	Limit   int
}

// CreateTechnicianInput represents input for creating a technician
type CreateTechnicianInput struct {
	Name     string
	Email    *string
	Phone    *string
	Address  *string
	Password string
	Status   models.TechnicianStatus
	OwnerID  uint64
}

// UpdateTechnicianInput represents a partial technician update
type UpdateTechnicianInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Status  *models.TechnicianStatus
}

// List returns a page of the owner's technicians
func (s *TechnicianService) List(input ListTechniciansInput) ([]models.Technician, int64, error) {
	technicians, total, err := s.technicianRepo.List(repository.TechnicianFilter{
		OwnerID: input.OwnerID,
		Search:  input.Search,
		Status:  input.Status,
		Page:    input.Page,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list technicians: %w", err)
	}

	return technicians, total, nil
}

// Get returns an owned technician
func (s *TechnicianService) Get(id, ownerID uint64) (*models.Technician, error) {
	technician, err := s.technicianRepo.FindOwned(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("failed to find technician: %w", err)
	}

	return technician, nil
}

// Create creates a technician under the owner. Email uniqueness is checked
// within the tenant only.
func (s *TechnicianService) Create(input CreateTechnicianInput) (*models.Technician, error) {
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	email := normalizeEmail(input.Email)
	if email != nil {
		taken, err := s.technicianRepo.EmailTaken(*email, input.OwnerID, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrTechnicianEmailTaken
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(input.Password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	status := input.Status
	if status == "" {
		status = models.TechnicianStatusActive
	}

	technician := &models.Technician{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Phone:        input.Phone,
		Address:      input.Address,
		Status:       status,
		Role:         models.RoleTechnician,
		UserID:       input.OwnerID,
	}

	if err := s.technicianRepo.Create(technician); err != nil {
		return nil, fmt.Errorf("failed to create technician: %w", err)
	}

	return technician, nil
}

// Update applies a partial update to an owned technician
func (s *TechnicianService) Update(id, ownerID uint64, input UpdateTechnicianInput) (*models.Technician, error) {
	technician, err := s.technicianRepo.FindOwned(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("failed to find technician: %w", err)
	}

	if input.Email != nil {
		email := normalizeEmail(input.Email)
		if email != nil && (technician.Email == nil || *technician.Email != *email) {
			taken, err := s.technicianRepo.EmailTaken(*email, ownerID, technician.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, ErrTechnicianEmailTaken
			}
		}
		technician.Email = email
	}
	if input.Name != nil && *input.Name != "" {
		technician.Name = *input.Name
	}
	if input.Phone != nil {
		technician.Phone = emptyToNil(input.Phone)
	}
	if input.Address != nil {
		technician.Address = emptyToNil(input.Address)
	}
	if input.Status != nil && *input.Status != "" {
		technician.Status = *input.Status
	}

	if err := s.technicianRepo.Update(technician); err != nil {
		return nil, fmt.Errorf("failed to update technician: %w", err)
	}

	return technician, nil
}

// Delete soft deletes an owned technician
func (s *TechnicianService) Delete(id, ownerID uint64) error {
	if _, err := s.technicianRepo.FindOwned(id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTechnicianNotFound
		}
		return fmt.Errorf("failed to find technician: %w", err)
	}

	if err := s.technicianRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete technician: %w", err)
	}

	return nil
}

// ChangePassword sets a new password on an owned technician
func (s *TechnicianService) ChangePassword(id, ownerID uint64, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	technician, err := s.technicianRepo.FindOwned(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTechnicianNotFound
		}
		return fmt.Errorf("failed to find technician: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(newPassword)), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	technician.PasswordHash = string(hashedPassword)

	if err := s.technicianRepo.Update(technician); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// normalizeEmail lowercases and trims, mapping empty to nil
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}

func emptyToNil(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
