package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdbodara/taskora-backend/internal/dto"
	apierrors "github.com/abdbodara/taskora-backend/internal/errors"
	"github.com/abdbodara/taskora-backend/internal/middleware"
	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/services"
	"github.com/abdbodara/taskora-backend/internal/utils"
)

// TaskHandler coordinates task HTTP handlers
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns a paginated, filtered page of the caller's tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	status, priority, ok := taskFiltersFromQuery(c)
	if !ok {
		return
	}

	tasks, total, err := h.taskService.List(services.ListTasksInput{
		OwnerID:  userID,
		Search:   c.Query("search"),
		Status:   status,
		Priority: priority,
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	pagination := utils.NewPaginationResponse(total, params)
	pagination.PerPage = len(tasks)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       dto.ToTaskDTOs(tasks),
		"pagination": pagination,
	})
}

// GetTask returns a single owned task with technicians and comments
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.ToTaskDTO(*task),
	})
}

// CreateTask creates a task with its assignment set
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title         string     `json:"title" binding:"required,min=3,max=200"`
		Description   string     `json:"description"`
		Status        string     `json:"status" binding:"omitempty,oneof=pending in_progress completed on_hold"`
		Priority      string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		DueDate       *time.Time `json:"dueDate"`
		TechnicianIDs []uint64   `json:"technicianIds"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.taskService.Create(services.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        models.TaskStatus(req.Status),
		Priority:      models.TaskPriority(req.Priority),
		DueDate:       req.DueDate,
		TechnicianIDs: req.TechnicianIDs,
		OwnerID:       userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dto.ToTaskDTO(*task),
	})
}

// UpdateTask applies a partial update. The body is parsed as raw JSON so an
// absent field, an explicit null and an empty list stay distinguishable.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput

	title, ok := stringField(c, rawReq, "title")
	if !ok {
		return
	}
	input.Title = title

	description, ok := stringField(c, rawReq, "description")
	if !ok {
		return
	}
	input.Description = description

	status, ok := stringField(c, rawReq, "status")
	if !ok {
		return
	}
	if status != nil {
		taskStatus := models.TaskStatus(*status)
		input.Status = &taskStatus
	}

	priority, ok := stringField(c, rawReq, "priority")
	if !ok {
		return
	}
	if priority != nil {
		taskPriority := models.TaskPriority(*priority)
		input.Priority = &taskPriority
	}

	if raw, present := rawReq["dueDate"]; present {
		if raw == nil {
			input.ClearDueDate = true
		} else {
			dueDateStr, ok := raw.(string)
			if !ok {
				apierrors.BadRequest(c, "Invalid date format. Use ISO8601 (e.g., YYYY-MM-DD)")
				return
			}
			parsed, err := parseDate(dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid date format. Use ISO8601 (e.g., YYYY-MM-DD)")
				return
			}
			input.DueDate = &parsed
		}
	}
	if raw, present := rawReq["technicianIds"]; present && raw != nil {
		values, ok := raw.([]any)
		if !ok {
			apierrors.BadRequest(c, "technicianIds must be a list of integers")
			return
		}
		ids := make([]uint64, 0, len(values))
		for _, v := range values {
			id, ok := v.(float64)
			if !ok || id < 0 {
				apierrors.BadRequest(c, "technicianIds must be a list of integers")
				return
			}
			ids = append(ids, uint64(id))
		}
		input.TechnicianIDs = &ids
	}

	task, err := h.taskService.Update(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.ToTaskDTO(*task),
	})
}

// DeleteTask soft deletes an owned task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// UpdateStatus lets an assigned technician update a task's status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	technicianID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.taskService.UpdateStatus(taskID, technicianID, models.TaskStatus(req.Status))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task status updated",
		"data": gin.H{
			"id":     task.ID,
			"status": task.Status,
		},
	})
}

// taskFiltersFromQuery validates the optional status/priority filters,
// responding 400 on unknown values
func taskFiltersFromQuery(c *gin.Context) (*models.TaskStatus, *models.TaskPriority, bool) {
	var status *models.TaskStatus
	var priority *models.TaskPriority

	if raw := c.Query("status"); raw != "" {
		value := models.TaskStatus(raw)
		if !value.Valid() {
			apierrors.BadRequest(c, "Invalid status filter")
			return nil, nil, false
		}
		status = &value
	}
	if raw := c.Query("priority"); raw != "" {
		value := models.TaskPriority(raw)
		if !value.Valid() {
			apierrors.BadRequest(c, "Invalid priority filter")
			return nil, nil, false
		}
		priority = &value
	}

	return status, priority, true
}

// stringField extracts an optional string field from a raw JSON body. A
// missing or null field yields nil; a present non-string value is a 400.
func stringField(c *gin.Context, body map[string]any, key string) (*string, bool) {
	raw, present := body[key]
	if !present || raw == nil {
		return nil, true
	}

	value, ok := raw.(string)
	if !ok {
		apierrors.BadRequest(c, key+" must be a string")
		return nil, false
	}
	return &value, true
}

// parseDate accepts RFC3339 timestamps and bare dates
func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found or access denied")
	case errors.Is(err, services.ErrInvalidAssignment):
		apierrors.BadRequest(c, "Some technician IDs are invalid or do not belong to the user")
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, "Invalid status")
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, "Invalid priority")
	case errors.Is(err, services.ErrDueDateInPast):
		apierrors.BadRequest(c, "Due date must be in the future")
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, "Title cannot be empty")
	case errors.Is(err, services.ErrNotAssigned):
		apierrors.Forbidden(c, "You are not assigned to this task")
	default:
		apierrors.InternalError(c, err)
	}
}
