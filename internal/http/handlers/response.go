// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by every endpoint: the
// error envelope, the error-to-status mapping and the success helpers.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting; 5xx responses are
//     logged with request context and never echo internal details.
//   - `failErr()` maps service and domain errors to status and code.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "gift not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/http/middleware"
	"github.com/tbourn/go-gift-registry/internal/seed"
	"github.com/tbourn/go-gift-registry/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
	// Per-field reasons for validation failures
	Fields map[string]string `json:"fields,omitempty"`
}

// fail aborts the request with a structured error. Server errors (>=500)
// are logged using the request-scoped logger from middleware.
func fail(c *gin.Context, status int, code, msg string) {
	failFields(c, status, code, msg, nil)
}

func failFields(c *gin.Context, status int, code, msg string, fields map[string]string) {
	resp := ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
		Fields:    fields,
	}
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr maps err onto the error envelope. Unknown errors become an opaque
// 500; the cause is attached to the Gin context so the access log sees it.
func failErr(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed", ve.Fields)
	case domain.IsInvariant(err):
		fail(c, http.StatusBadRequest, ErrCodeInvariant, err.Error())
	case errors.Is(err, services.ErrInvalidReference):
		fail(c, http.StatusBadRequest, ErrCodeInvalidReference, "referenced record does not exist")
	case errors.Is(err, services.ErrEmptyGiftIDs):
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed",
			map[string]string{"giftIds": "must contain at least one id"})
	case errors.Is(err, services.ErrEventMismatch):
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed",
			map[string]string{"event_id": "does not match the wishlist event"})
	case services.IsNotFound(err):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, "record already exists")
	case errors.Is(err, seed.ErrSeedInProgress):
		fail(c, http.StatusConflict, ErrCodeSeedInProgress, "a seed pass is already running")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
