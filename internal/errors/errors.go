package errors

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform failure envelope. Every domain failure is
// converted to this shape at the handler boundary.
type ErrorResponse struct {
	Success          bool         `json:"success"`
	Error            string       `json:"error"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}

// FieldError carries a field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Success: false, Error: message})
}

// Unauthorized sends a 401 response (credential missing)
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 response (role or ownership mismatch, or a bad token)
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, message)
}

// NotFound sends a 404 response. Records outside the caller's tenant use the
// same message as absent records so existence is not leaked.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, message)
}

// ValidationFailed sends a 400 response with field-level messages
func ValidationFailed(c *gin.Context, fields []FieldError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success:          false,
		Error:            "Validation failed",
		ValidationErrors: fields,
	})
}

// Conflict reports a duplicate (e.g. email already in use). Returned as 400 to
// match the rest of the request-validation failures.
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusBadRequest, message)
}

// InternalError logs the cause server-side and sends a generic 500 response
func InternalError(c *gin.Context, err error) {
	if err != nil {
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	RespondWithError(c, http.StatusInternalServerError, "Internal server error")
}
