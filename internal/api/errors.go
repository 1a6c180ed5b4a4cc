package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/middleware"
)

// statusFor maps a service error to its HTTP status and APIError code.
func statusFor(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, domain.ErrNoSymptoms):
		return http.StatusBadRequest, domain.ErrValidation
	case errors.Is(err, domain.ErrUnknownReference):
		return http.StatusUnprocessableEntity, domain.ErrInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFoundCode
	case errors.Is(err, domain.ErrDuplicateRule):
		return http.StatusConflict, domain.ErrConflict
	case errors.Is(err, domain.ErrHistoryDisabled):
		return http.StatusNotImplemented, domain.ErrUnavailableCode
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, domain.ErrUnavailableCode
	default:
		return http.StatusInternalServerError, domain.ErrInternalServer
	}
}

// respondError writes err as an APIError. Internal failures are logged and
// their details withheld from the client.
func (s *Server) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	requestID := c.GetString(middleware.CorrelationIDKey)

	message := err.Error()
	details := ""
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		message = "Validation failed"
		details = verr.Error()
	}
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("correlation_id", requestID).Error("Request failed")
		message = "Internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, requestID))
}

// badRequest rejects malformed input that never reached a service.
func (s *Server) badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, domain.NewAPIError(
		domain.ErrInvalidInput, message, details, c.GetString(middleware.CorrelationIDKey)))
}
