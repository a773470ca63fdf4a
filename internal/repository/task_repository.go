package repository

import (
	"strings"

	"github.com/abdbodara/taskora-backend/internal/database"
	"github.com/abdbodara/taskora-backend/internal/models"
	"gorm.io/gorm"
)

// taskSortOrder is the listing order shared by both task views: due date
// ascending with NULLs last, priority from urgent down to low, newest first.
// Priority is ranked explicitly because it is stored as a varchar.
const taskSortOrder = "CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, " +
	"CASE tasks.priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, " +
	"tasks.created_at DESC"

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindOwned finds a task scoped by (id, owner) with optional preloading
func (r *GormTaskRepository) FindOwned(id, ownerID uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Where("tasks.user_id = ?", ownerID)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByID finds a task by id regardless of tenant
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves a tenant's tasks with filtering and pagination.
//
// The fetch is two-phase. Phase one selects only matching task ids, joining
// technicians solely when a search term reaches into their columns, grouped
// by task id so the join cannot duplicate rows; pagination applies here.
// Phase two hydrates full rows with technicians preloaded for exactly that
// id set, re-applying the same order. The total is a distinct count over the
// same predicate, so it is never inflated by the join either.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	build := func() *gorm.DB {
		query := r.db.Model(&models.Task{}).Where("tasks.user_id = ?", filter.OwnerID)

		if filter.Status != nil {
			query = query.Where("tasks.status = ?", *filter.Status)
		}
		if filter.Priority != nil {
			query = query.Where("tasks.priority = ?", *filter.Priority)
		}
		if filter.Search != "" {
			pattern := "%" + strings.ToLower(filter.Search) + "%"
			query = query.
				Joins("LEFT JOIN task_technicians ON task_technicians.task_id = tasks.id").
				Joins("LEFT JOIN technicians ON technicians.id = task_technicians.technician_id AND technicians.deleted_at IS NULL").
				Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ? OR LOWER(technicians.name) LIKE ? OR LOWER(technicians.email) LIKE ?",
					pattern, pattern, pattern, pattern)
		}

		return query
	}

	var total int64
	if err := build().Distinct("tasks.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	idQuery := build().
		Select("tasks.id").
		Group("tasks.id").
		Order(taskSortOrder).
		Scopes(database.Paginate(filter.Page, filter.Limit))

	var ids []uint64
	if err := idQuery.Pluck("tasks.id", &ids).Error; err != nil {
		return nil, 0, err
	}

	if len(ids) == 0 {
		return []models.Task{}, total, nil
	}

	var tasks []models.Task
	if err := r.db.
		Preload("Technicians").
		Where("tasks.id IN ?", ids).
		Order(taskSortOrder).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListAssigned retrieves the tasks a technician is assigned to. The join is
// restricted to a single technician id, so rows cannot duplicate; the count
// is still distinct to stay safe against schema drift.
func (r *GormTaskRepository) ListAssigned(filter AssignedTaskFilter) ([]models.Task, int64, error) {
	build := func() *gorm.DB {
		query := r.db.Model(&models.Task{}).
			Joins("JOIN task_technicians ON task_technicians.task_id = tasks.id").
			Where("task_technicians.technician_id = ?", filter.TechnicianID)

		if filter.Search != "" {
			pattern := "%" + strings.ToLower(filter.Search) + "%"
			query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
		}
		if filter.Status != nil {
			query = query.Where("tasks.status = ?", *filter.Status)
		}
		if filter.Priority != nil {
			query = query.Where("tasks.priority = ?", *filter.Priority)
		}
		if filter.DueDateFrom != nil {
			query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
		}
		if filter.DueDateTo != nil {
			query = query.Where("tasks.due_date <= ?", *filter.DueDateTo)
		}

		return query
	}

	var total int64
	if err := build().Distinct("tasks.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := build().
		Order(taskSortOrder).
		Scopes(database.Paginate(filter.Page, filter.Limit))

	var tasks []models.Task
	if err := listQuery.
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC")
		}).
		Preload("Comments.Technician").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists all fields of a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task and removes its assignment rows
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskTechnician{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceTechnicians sets the assignment set to exactly the given ids.
// The rewrite is transactional; callers validate tenant ownership first.
func (r *GormTaskRepository) ReplaceTechnicians(taskID uint64, technicianIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskTechnician{}).Error; err != nil {
			return err
		}

		if len(technicianIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskTechnician, len(technicianIDs))
		for i, technicianID := range technicianIDs {
			assignments[i] = models.TaskTechnician{
				TaskID:       taskID,
				TechnicianID: technicianID,
			}
		}

		return tx.Create(&assignments).Error
	})
}

// HasTechnician reports whether the technician is in the task's assignment
// set. An absent or deleted task, or a deleted technician, yields false.
func (r *GormTaskRepository) HasTechnician(taskID, technicianID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskTechnician{}).
		Joins("JOIN tasks ON tasks.id = task_technicians.task_id AND tasks.deleted_at IS NULL").
		Joins("JOIN technicians ON technicians.id = task_technicians.technician_id AND technicians.deleted_at IS NULL").
		Where("task_technicians.task_id = ? AND task_technicians.technician_id = ?", taskID, technicianID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
