package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdbodara/taskora-backend/internal/dto"
	apierrors "github.com/abdbodara/taskora-backend/internal/errors"
	"github.com/abdbodara/taskora-backend/internal/middleware"
	"github.com/abdbodara/taskora-backend/internal/services"
)

// CommentHandler coordinates comment HTTP handlers
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// AddComment appends a comment to a task the calling technician is assigned to
func (h *CommentHandler) AddComment(c *gin.Context) {
	technicianID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "taskId")
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Content string `json:"content"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.Add(taskID, technicianID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyComment):
			apierrors.BadRequest(c, "Comment content is required")
		case errors.Is(err, services.ErrNotAssigned):
			apierrors.Forbidden(c, "You are not assigned to this task or task does not exist")
		default:
			apierrors.InternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    comment,
	})
}

// ListComments returns a task's comments with their authors, newest first
func (h *CommentHandler) ListComments(c *gin.Context) {
	ownerID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.ListByTask(taskID, ownerID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.ToCommentDTOs(comments),
	})
}
