package repository

import (
	"time"

	"github.com/abdbodara/taskora-backend/internal/models"
)

// TaskFilter holds filtering options for the admin task listing. OwnerID is
// always set: every query is intersected with the caller's tenant.
type TaskFilter struct {
	OwnerID  uint64
	Search   string
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Page     int
	Limit    int
}

// AssignedTaskFilter holds filtering options for a technician's own task view
type AssignedTaskFilter struct {
	TechnicianID uint64
	Search       string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDateFrom  *time.Time
	DueDateTo    *time.Time
	Page         int
	Limit        int
}

// TechnicianFilter holds filtering options for the technician listing
type TechnicianFilter struct {
	OwnerID uint64
	Search  string
	Status  *models.TechnicianStatus
	Page    int
	Limit   int
}

// UserFilter holds filtering options for the user listing
type UserFilter struct {
	Search string
	Page   int
	Limit  int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindOwned finds a task scoped by (id, owner) with optional preloading.
	// A task owned by another tenant is indistinguishable from an absent one.
	FindOwned(id, ownerID uint64, preload ...string) (*models.Task, error)

	// FindByID finds a task by id regardless of tenant (technician paths)
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves a tenant's tasks with filtering and pagination.
	// Pagination is applied to a distinct id set before rows are hydrated, so
	// the technician join never duplicates or drops tasks on a page.
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListAssigned retrieves the tasks a technician is assigned to, with
	// comments and their authors attached
	ListAssigned(filter AssignedTaskFilter) ([]models.Task, int64, error)

	// Update persists all fields of a task
	Update(task *models.Task) error

	// Delete soft deletes a task and removes its assignment rows
	Delete(id uint64) error

	// ReplaceTechnicians sets the assignment set to exactly the given ids
	ReplaceTechnicians(taskID uint64, technicianIDs []uint64) error

	// HasTechnician reports whether the technician is in the task's
	// assignment set (false when the task does not exist)
	HasTechnician(taskID, technicianID uint64) (bool, error)
}

// TechnicianRepository defines the interface for technician data access
type TechnicianRepository interface {
	Create(technician *models.Technician) error

	// FindOwned finds a technician scoped by (id, owner)
	FindOwned(id, ownerID uint64) (*models.Technician, error)

	// FindByEmail finds a technician by email across tenants (login)
	FindByEmail(email string) (*models.Technician, error)

	// List retrieves a tenant's technicians with search and pagination
	List(filter TechnicianFilter) ([]models.Technician, int64, error)

	Update(technician *models.Technician) error

	// Delete soft deletes a technician
	Delete(id uint64) error

	// CountOwnedByIDs counts how many of the given ids resolve to live
	// technicians under the owner; used to validate assignment sets
	CountOwnedByIDs(ids []uint64, ownerID uint64) (int64, error)

	// EmailTaken reports whether another technician of the same owner
	// already uses the email
	EmailTaken(email string, ownerID uint64, excludeID uint64) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64, preload ...string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	List(filter UserFilter) ([]models.User, int64, error)
	Update(user *models.User) error
	Delete(id uint64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error

	// ListByTask returns a task's comments with their authors, newest first
	ListByTask(taskID uint64) ([]models.Comment, error)
}
