package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/repository"
)

var ErrEmptyComment = errors.New("comment content is required")

// CommentService handles append-only task comments
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
	}
}

// Add creates a comment by a technician assigned to the task. A technician
// outside the assignment set (or an absent task) is rejected the same way.
func (s *CommentService) Add(taskID, technicianID uint64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}

	assigned, err := s.taskRepo.HasTechnician(taskID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	comment := &models.Comment{
		Content:      content,
		TaskID:       taskID,
		TechnicianID: technicianID,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// ListByTask returns a task's comments with their authors, newest first.
// The task must belong to the caller's tenant.
func (s *CommentService) ListByTask(taskID, ownerID uint64) ([]models.Comment, error) {
	if _, err := s.taskRepo.FindOwned(taskID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
