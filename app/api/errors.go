package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/validation"
)

func authStatus(code apperr.AuthCode) int {
	switch code {
	case apperr.AuthTooManyRequests:
		return http.StatusTooManyRequests
	case apperr.AuthRegistrationOff, apperr.AuthInvalidCode:
		return http.StatusForbidden
	case apperr.AuthEmailInUse:
		return http.StatusConflict
	case apperr.AuthWeakPassword:
		return http.StatusBadRequest
	default:
		return http.StatusUnauthorized
	}
}

// respondError writes err with the status its kind maps to. operation
// names the failing call in the server log.
func respondError(c *gin.Context, operation string, err error) {
	var ve *validation.RequestValidationError
	var ae *apperr.AuthError
	var ue *apperr.UpstreamError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  ve.Error(),
			"fields": ve.Fields,
		})
	case errors.As(err, &ae):
		c.JSON(authStatus(ae.Code), gin.H{
			"error": ae.Message(),
			"code":  ae.Code,
		})
	case errors.Is(err, apperr.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &ue):
		slog.Error("Upstream error", "operation", operation, "service", ue.Service, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service unavailable"})
	default:
		slog.Error("Database error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the request body into v, answering 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
