package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdbodara/taskora-backend/internal/dto"
	apierrors "github.com/abdbodara/taskora-backend/internal/errors"
	"github.com/abdbodara/taskora-backend/internal/middleware"
	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/services"
	"github.com/abdbodara/taskora-backend/internal/utils"
)

// TechnicianHandler coordinates technician HTTP handlers
type TechnicianHandler struct {
	technicianService *services.TechnicianService
	taskService       *services.TaskService
}

// NewTechnicianHandler creates a new TechnicianHandler
func NewTechnicianHandler(technicianService *services.TechnicianService, taskService *services.TaskService) *TechnicianHandler {
	return &TechnicianHandler{
		technicianService: technicianService,
		taskService:       taskService,
	}
}

// ListTechnicians returns a paginated page of the caller's technicians
func (h *TechnicianHandler) ListTechnicians(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	var status *models.TechnicianStatus
	if raw := c.Query("status"); raw != "" {
		value := models.TechnicianStatus(raw)
		if value != models.TechnicianStatusActive && value != models.TechnicianStatusInactive {
			apierrors.BadRequest(c, "Status must be either active or inactive")
			return
		}
		status = &value
	}

	technicians, total, err := h.technicianService.List(services.ListTechniciansInput{
		OwnerID: userID,
		Search:  c.Query("search"),
		Status:  status,
		Page:    params.Page,
		Limit:   params.Limit,
	})
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       technicians,
		"pagination": utils.NewPaginationResponse(total, params),
	})
}

// GetTechnician returns a single owned technician
func (h *TechnicianHandler) GetTechnician(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	technicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	technician, err := h.technicianService.Get(technicianID, userID)
	if err != nil {
		respondTechnicianError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// CreateTechnician creates a technician under the caller's tenant
func (h *TechnicianHandler) CreateTechnician(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTechnicianRequest struct {
		Name     string  `json:"name" binding:"required,min=2,max=100"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Phone    *string `json:"phone" binding:"omitempty,max=30"`
		Address  *string `json:"address"`
		Password string  `json:"password" binding:"required,min=6"`
		Status   string  `json:"status" binding:"omitempty,oneof=active inactive"`
	}

	var req CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	technician, err := h.technicianService.Create(services.CreateTechnicianInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
		Status:   models.TechnicianStatus(req.Status),
		OwnerID:  userID,
	})
	if err != nil {
		respondTechnicianError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    technician,
	})
}

// UpdateTechnician applies a partial update to an owned technician
func (h *TechnicianHandler) UpdateTechnician(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	technicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateTechnicianRequest struct {
		Name    *string `json:"name" binding:"omitempty,min=2,max=100"`
		Email   *string `json:"email" binding:"omitempty,email"`
		Phone   *string `json:"phone" binding:"omitempty,max=30"`
		Address *string `json:"address"`
		Status  *string `json:"status" binding:"omitempty,oneof=active inactive"`
	}

	var req UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var status *models.TechnicianStatus
	if req.Status != nil {
		value := models.TechnicianStatus(*req.Status)
		status = &value
	}

	technician, err := h.technicianService.Update(technicianID, userID, services.UpdateTechnicianInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  status,
	})
	if err != nil {
		respondTechnicianError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// DeleteTechnician soft deletes an owned technician
func (h *TechnicianHandler) DeleteTechnician(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	technicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.technicianService.Delete(technicianID, userID); err != nil {
		respondTechnicianError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Technician deleted successfully",
	})
}

// ChangePassword sets a new password on an owned technician
func (h *TechnicianHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	technicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ChangePasswordRequest struct {
		NewPassword string `json:"newPassword" binding:"required"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.technicianService.ChangePassword(technicianID, userID, req.NewPassword); err != nil {
		respondTechnicianError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}

// ListAssignedTasks returns the calling technician's tasks with comments
func (h *TechnicianHandler) ListAssignedTasks(c *gin.Context) {
	technicianID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	status, priority, ok := taskFiltersFromQuery(c)
	if !ok {
		return
	}

	input := services.ListAssignedTasksInput{
		TechnicianID: technicianID,
		Search:       c.Query("search"),
		Status:       status,
		Priority:     priority,
		Page:         params.Page,
		Limit:        params.Limit,
	}

	if raw := c.Query("dueDateFrom"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid date format for dueDateFrom. Use ISO8601 (e.g., YYYY-MM-DD)")
			return
		}
		input.DueDateFrom = &parsed
	}
	if raw := c.Query("dueDateTo"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid date format for dueDateTo. Use ISO8601 (e.g., YYYY-MM-DD)")
			return
		}
		input.DueDateTo = &parsed
	}

	tasks, total, err := h.taskService.ListAssigned(input)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       dto.ToTaskDTOs(tasks),
		"pagination": utils.NewPaginationResponse(total, params),
	})
}

func respondTechnicianError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTechnicianNotFound):
		apierrors.NotFound(c, "Technician not found or access denied")
	case errors.Is(err, services.ErrTechnicianEmailTaken):
		apierrors.Conflict(c, "A technician with this email already exists in your contacts")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, "New password must be at least 6 characters long")
	default:
		apierrors.InternalError(c, err)
	}
}
