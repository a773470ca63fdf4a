package repository

import (
	"strings"

	"github.com/abdbodara/taskora-backend/internal/database"
	"github.com/abdbodara/taskora-backend/internal/models"
	"gorm.io/gorm"
)

// GormTechnicianRepository is a GORM implementation of TechnicianRepository
type GormTechnicianRepository struct {
	db *gorm.DB
}

// NewTechnicianRepository creates a new TechnicianRepository
func NewTechnicianRepository(db *gorm.DB) TechnicianRepository {
	return &GormTechnicianRepository{db: db}
}

// Create creates a new technician
func (r *GormTechnicianRepository) Create(technician *models.Technician) error {
	return r.db.Create(technician).Error
}

// FindOwned finds a technician scoped by (id, owner)
func (r *GormTechnicianRepository) FindOwned(id, ownerID uint64) (*models.Technician, error) {
	var technician models.Technician
	if err := r.db.Where("user_id = ?", ownerID).First(&technician, id).Error; err != nil {
		return nil, err
	}
	return &technician, nil
}

// FindByEmail finds a technician by email across tenants
func (r *GormTechnicianRepository) FindByEmail(email string) (*models.Technician, error) {
	var technician models.Technician
	if err := r.db.Where("email = ?", email).First(&technician).Error; err != nil {
		return nil, err
	}
	return &technician, nil
}

// List retrieves a tenant's technicians with search and pagination, ordered
// by creation time ascending. No join is traversed, so a single
// find-and-count round trip is enough.
func (r *GormTechnicianRepository) List(filter TechnicianFilter) ([]models.Technician, int64, error) {
	query := r.db.Model(&models.Technician{}).Where("user_id = ?", filter.OwnerID)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at ASC").Scopes(database.Paginate(filter.Page, filter.Limit))

	var technicians []models.Technician
	if err := listQuery.Find(&technicians).Error; err != nil {
		return nil, 0, err
	}

	return technicians, total, nil
}

// Update persists all fields of a technician
func (r *GormTechnicianRepository) Update(technician *models.Technician) error {
	return r.db.Save(technician).Error
}

// Delete soft deletes a technician. Assignment rows are kept; assignment
// checks join back to live technicians where it matters.
func (r *GormTechnicianRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Technician{}, id).Error
}

// CountOwnedByIDs counts how many of the given ids resolve to live
// technicians under the owner
func (r *GormTechnicianRepository) CountOwnedByIDs(ids []uint64, ownerID uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.Model(&models.Technician{}).
		Where("id IN ? AND user_id = ?", ids, ownerID).
		Count(&count).Error

	return count, err
}

// EmailTaken reports whether another technician of the same owner already
// uses the email. Uniqueness is per tenant on create and update alike.
func (r *GormTechnicianRepository) EmailTaken(email string, ownerID uint64, excludeID uint64) (bool, error) {
	query := r.db.Model(&models.Technician{}).
		Where("email = ? AND user_id = ?", email, ownerID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
