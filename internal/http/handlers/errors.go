package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/domain"
	"ridebooking/internal/http/middleware"
	"ridebooking/internal/utils"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Storage details
// are logged, never returned.
func RespondDomainError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsAuth(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case domain.IsPersistence(err):
		utils.LogFailure(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.FullPath(), "persistence failure", err)
		respondError(c, http.StatusInternalServerError, "persistence_error", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	default:
		utils.LogFailure(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.FullPath(), "unhandled error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
