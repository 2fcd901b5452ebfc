package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

// envelope is the uniform JSON body returned by every endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *pageMeta   `json:"meta,omitempty"`
}

type pageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// NoContent writes a 200 with no payload (delete acknowledgements).
func NoContent(c *gin.Context) {
	c.JSON(http.StatusOK, envelope{Success: true})
}

// Paginated writes a 200 with payload plus paging metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Meta:    &pageMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: message})
}

// Error maps a domain error to its HTTP status. Unknown errors become 500
// with a generic message so internals never leak to clients.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		message = domErr.Message
		switch {
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrPermissionDenied):
			status = http.StatusForbidden
		case errors.Is(err, domain.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyRequested), errors.Is(err, domain.ErrInvalidState):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrDisabled), errors.Is(err, domain.ErrOutOfStock):
			status = http.StatusUnprocessableEntity
		default:
			status = http.StatusInternalServerError
		}
	}

	c.JSON(status, envelope{Success: false, Error: message})
}
