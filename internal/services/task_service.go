package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/repository"
)

var (
	ErrTaskNotFound      = errors.New("task not found or access denied")
	ErrInvalidAssignment = errors.New("some technician IDs are invalid or do not belong to the user")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrNotAssigned       = errors.New("you are not assigned to this task")
	ErrDueDateInPast     = errors.New("due date must be in the future")
	ErrTitleRequired     = errors.New("title is required")
)

// technicianStatuses a technician may set on an assigned task. Narrower than
// the full enum: on_hold stays an admin-side transition.
var technicianStatuses = map[models.TaskStatus]bool{
	models.TaskStatusPending:    true,
	models.TaskStatusInProgress: true,
	models.TaskStatusCompleted:  true,
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo       repository.TaskRepository
	technicianRepo repository.TechnicianRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, technicianRepo repository.TechnicianRepository) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		technicianRepo: technicianRepo,
	}
}

// ListTasksInput represents filters for the admin task listing
type ListTasksInput struct {
	OwnerID  uint64
	Search   string
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Page     int
	Limit    int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.TaskPriority
	DueDate       *time.Time
	TechnicianIDs []uint64
	OwnerID       uint64
}

// UpdateTaskInput represents a partial task update. Nil fields are left
// untouched; ClearDueDate distinguishes an explicit null from an absent
// due_date. A non-nil TechnicianIDs (even empty) replaces the whole
// assignment set.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	TechnicianIDs *[]uint64
}

// ListAssignedTasksInput represents filters for a technician's own task view
type ListAssignedTasksInput struct {
	TechnicianID uint64
	Search       string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDateFrom  *time.Time
	DueDateTo    *time.Time
	Page         int
	Limit        int
}

// List returns a page of the owner's tasks with their technicians attached
func (s *TaskService) List(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID:  input.OwnerID,
		Search:   input.Search,
		Status:   input.Status,
		Priority: input.Priority,
		Page:     input.Page,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// Get returns an owned task with technicians, comments and comment authors
func (s *TaskService) Get(taskID, ownerID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(taskID, ownerID, "Technicians", "Comments", "Comments.Technician")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// Create creates a task and sets its assignment set to the validated
// technician list. Every technician id must resolve under the owner.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.DueDate != nil && !input.DueDate.After(time.Now()) {
		return nil, ErrDueDateInPast
	}

	technicianIDs := uniqueUint64(input.TechnicianIDs)
	if err := s.validateAssignment(technicianIDs, input.OwnerID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		UserID:      input.OwnerID,
	}
	if input.Status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.taskRepo.ReplaceTechnicians(task.ID, technicianIDs); err != nil {
		return nil, fmt.Errorf("failed to assign technicians: %w", err)
	}

	return s.taskRepo.FindOwned(task.ID, input.OwnerID, "Technicians")
}

// Update applies a partial update to an owned task. When TechnicianIDs is
// present the assignment set is validated and replaced wholesale.
func (s *TaskService) Update(taskID, ownerID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(taskID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.TechnicianIDs != nil {
		technicianIDs := uniqueUint64(*input.TechnicianIDs)
		if err := s.validateAssignment(technicianIDs, ownerID); err != nil {
			return nil, err
		}
		if err := s.taskRepo.ReplaceTechnicians(task.ID, technicianIDs); err != nil {
			return nil, fmt.Errorf("failed to replace technicians: %w", err)
		}
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		transitionStatus(task, *input.Status)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindOwned(task.ID, ownerID, "Technicians")
}

// Delete soft deletes an owned task
func (s *TaskService) Delete(taskID, ownerID uint64) error {
	if _, err := s.taskRepo.FindOwned(taskID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// UpdateStatus lets an assigned technician move a task between pending,
// in_progress and completed. Only the status (and the derived completion
// timestamp) is written.
func (s *TaskService) UpdateStatus(taskID, technicianID uint64, status models.TaskStatus) (*models.Task, error) {
	if !technicianStatuses[status] {
		return nil, ErrInvalidStatus
	}

	assigned, err := s.taskRepo.HasTechnician(taskID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAssigned
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	transitionStatus(task, status)

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return task, nil
}

// ListAssigned returns a page of the technician's tasks with comments and
// comment authors attached
func (s *TaskService) ListAssigned(input ListAssignedTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListAssigned(repository.AssignedTaskFilter{
		TechnicianID: input.TechnicianID,
		Search:       input.Search,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDateFrom:  input.DueDateFrom,
		DueDateTo:    input.DueDateTo,
		Page:         input.Page,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assigned tasks: %w", err)
	}

	return tasks, total, nil
}

// validateAssignment checks every technician id resolves under the owner
func (s *TaskService) validateAssignment(technicianIDs []uint64, ownerID uint64) error {
	if len(technicianIDs) == 0 {
		return nil
	}

	count, err := s.technicianRepo.CountOwnedByIDs(technicianIDs, ownerID)
	if err != nil {
		return fmt.Errorf("failed to verify technicians: %w", err)
	}
	if int(count) != len(technicianIDs) {
		return ErrInvalidAssignment
	}

	return nil
}

// transitionStatus applies a status change together with the derived
// completion timestamp: set on entering completed, cleared on leaving it.
// Re-asserting the current status changes nothing.
func transitionStatus(task *models.Task, status models.TaskStatus) {
	if task.Status == status {
		return
	}

	if status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	} else if task.Status == models.TaskStatusCompleted {
		task.CompletedAt = nil
	}

	task.Status = status
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
