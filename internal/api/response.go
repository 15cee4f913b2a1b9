package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
)

// errorStatus maps a service error to an HTTP status and client message.
func errorStatus(err error) (int, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrTradeNotFound):
		return http.StatusNotFound, "Trade not found"
	case apperrors.Is(err, apperrors.ErrSetupExists):
		return http.StatusBadRequest, "Setup name already exists"
	case apperrors.Is(err, apperrors.ErrInputValidation):
		var ve *apperrors.ValidationError
		if apperrors.As(err, &ve) {
			return http.StatusBadRequest, ve.Error()
		}
		return http.StatusBadRequest, err.Error()
	case apperrors.Is(err, apperrors.ErrDatabaseError):
		return http.StatusInternalServerError, "Database error"
	}
	return http.StatusInternalServerError, err.Error()
}

func fail(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger := logging.FromContext(c.Request.Context())
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
