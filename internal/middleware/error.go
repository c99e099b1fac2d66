package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/nucmed/petplan/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler translates errors attached to the context into HTTP
// responses. Plan-domain errors map onto 4xx statuses: structurally invalid
// input is 400, catalog inconsistencies and unsolvable plans are 422.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		lastErr := c.Errors.Last().Err
		status := statusFor(lastErr)

		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: lastErr.Error(),
			TraceID: requestID,
		})
	}
}

func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrInvalidParameter, apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrMissingScheme, apperrors.ErrInvalidWeight,
		apperrors.ErrInfeasible, apperrors.ErrInsufficientInventory:
		return http.StatusUnprocessableEntity
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
