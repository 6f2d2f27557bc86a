package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atriumhq/service-reservation/pkg/domain"
)

// Envelope is the standard JSON response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginatedEnvelope wraps a page of items with paging metadata.
type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// Error maps a typed domain error to the appropriate HTTP status.
func Error(c *gin.Context, err error) {
	var (
		validationErr   *domain.ValidationError
		notFoundErr     *domain.NotFoundError
		invalidStateErr *domain.InvalidStateError
		conflictErr     *domain.ConflictError
		forbiddenErr    *domain.ForbiddenError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, Envelope{Success: false, Error: notFoundErr.Error()})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusUnprocessableEntity, Envelope{Success: false, Error: invalidStateErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, Envelope{Success: false, Error: conflictErr.Error()})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, Envelope{Success: false, Error: forbiddenErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
	}
}
