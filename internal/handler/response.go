package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/petcare-api/pkg/errors"
)

type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps application error kinds onto HTTP statuses and keeps
// kind-specific details (conflicting ids, opening hours, states) in the
// body so clients can act on them.
func RespondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case errors.ErrNotFound:
		status = http.StatusNotFound
	case errors.ErrValidation, errors.ErrBadRequest:
		status = http.StatusBadRequest
	case errors.ErrOutsideOpeningHours, errors.ErrInvalidTransition, errors.ErrImmutable:
		status = http.StatusUnprocessableEntity
	case errors.ErrSchedulingConflict, errors.ErrPersistenceConflict:
		status = http.StatusConflict
	}

	c.JSON(status, &Response{
		Status:  "error",
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
