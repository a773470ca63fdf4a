package dto

import (
	"time"

	"github.com/abdbodara/taskora-backend/internal/models"
)

// TechnicianBriefDTO is the id/name/email projection attached to tasks and
// comments in API responses
type TechnicianBriefDTO struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID         uint64              `json:"id"`
	Content    string              `json:"content"`
	CreatedAt  time.Time           `json:"created_at"`
	Technician *TechnicianBriefDTO `json:"technician,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    models.TaskPriority  `json:"priority"`
	DueDate     *time.Time           `json:"due_date"`
	CompletedAt *time.Time           `json:"completed_at"`
	UserID      uint64               `json:"user_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Technicians []TechnicianBriefDTO `json:"technicians"`
	Comments    []CommentDTO         `json:"comments,omitempty"`
}

// ToTechnicianBriefDTO converts a Technician model to its brief projection
func ToTechnicianBriefDTO(technician models.Technician) TechnicianBriefDTO {
	return TechnicianBriefDTO{
		ID:    technician.ID,
		Name:  technician.Name,
		Email: technician.Email,
	}
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}

	// Include the author if preloaded
	if comment.Technician.ID != 0 {
		author := ToTechnicianBriefDTO(comment.Technician)
		dto.Technician = &author
	}

	return dto
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		dtos[i] = ToCommentDTO(comment)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Technicians: make([]TechnicianBriefDTO, len(task.Technicians)),
	}

	for i, technician := range task.Technicians {
		dto.Technicians[i] = ToTechnicianBriefDTO(technician)
	}

	if len(task.Comments) > 0 {
		dto.Comments = ToCommentDTOs(task.Comments)
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
