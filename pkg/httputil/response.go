package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendly/scheduler-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConfirmationResponse is returned with 409 when a booking needs the
// caller to confirm before it can proceed.
type ConfirmationResponse struct {
	ConfirmationRequired bool   `json:"confirmation_required"`
	Message              string `json:"message"`
	Context              string `json:"context"`
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrValidation:
		return http.StatusBadRequest
	case errors.ErrAvailability, errors.ErrConflict:
		return http.StatusConflict
	case errors.ErrPermission:
		return http.StatusForbidden
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a success response with 201
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	var statusCode int
	var code int
	var message string

	if appErr, ok := err.(*errors.AppError); ok {
		statusCode = httpStatus(appErr.Code)
		code = int(appErr.Code)
		message = appErr.Message
	} else {
		statusCode = http.StatusInternalServerError
		code = int(errors.ErrInternal)
		message = "Internal server error"
	}

	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

// RespondWithConfirmation sends a 409 asking the caller to retry with
// the matching override flag set.
func RespondWithConfirmation(c *gin.Context, message, context string) {
	c.JSON(http.StatusConflict, ConfirmationResponse{
		ConfirmationRequired: true,
		Message:              message,
		Context:              context,
	})
}
