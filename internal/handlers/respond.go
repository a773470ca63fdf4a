package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/abdbodara/taskora-backend/internal/errors"
)

// bindError converts a gin binding failure into the error envelope,
// surfacing field-level messages when the validator produced them
func bindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]apierrors.FieldError, len(validationErrs))
		for i, fieldErr := range validationErrs {
			fields[i] = apierrors.FieldError{
				Field:   strings.ToLower(fieldErr.Field()),
				Message: fieldErr.Error(),
			}
		}
		apierrors.ValidationFailed(c, fields)
		return
	}

	apierrors.BadRequest(c, "Invalid request body")
}

// parseIDParam reads a numeric path parameter, responding 400 on garbage
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
