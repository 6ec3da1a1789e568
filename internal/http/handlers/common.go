package handlers

import (
	"errors"
	"net/http"

	"tiketbus/internal/domain"
	"tiketbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"success":    false,
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return false
	}
	return true
}

// RespondDomainError maps domain errors to HTTP responses. AlreadyValidated
// (Conflict) stays a distinct, non-5xx class from other failures.
func RespondDomainError(c *gin.Context, err error) {
	reqID := middleware.GetRequestID(c)
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false, "code": "validation_error", "error": err.Error(), "request_id": reqID,
		})
	case domain.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false, "code": "unauthorized", "error": err.Error(), "request_id": reqID,
		})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false, "code": "not_found", "error": err.Error(), "request_id": reqID,
		})
	case domain.IsConflict(err):
		payload := gin.H{
			"success": false, "code": "conflict", "error": err.Error(), "request_id": reqID,
		}
		// only ticket conflicts mean "already validated"; an exhausted
		// payment code is a different outcome
		var conflict domain.ConflictError
		if errors.As(err, &conflict) && conflict.Resource == "ticket" {
			payload["already_validated"] = true
		}
		c.JSON(http.StatusConflict, payload)
	case domain.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false, "code": "unavailable", "error": "layanan sementara tidak tersedia", "request_id": reqID,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false, "code": "internal_error", "error": "terjadi kesalahan", "request_id": reqID,
		})
	}
}
