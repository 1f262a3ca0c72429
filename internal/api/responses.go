package api

import (
	"errors"
	"net/http"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string              `json:"error" example:"something went wrong"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Message   string `json:"message" example:"Backend is alive"`
}

type BatchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type BatchResponse[T any] struct {
	Created []T              `json:"created"`
	Errors  []BatchItemError `json:"errors"`
	Summary BatchSummary     `json:"summary"`
}

func NewBatchResponse[T any](created []T, errs []BatchItemError) BatchResponse[T] {
	if created == nil {
		created = []T{}
	}
	if errs == nil {
		errs = []BatchItemError{}
	}
	return BatchResponse[T]{
		Created: created,
		Errors:  errs,
		Summary: BatchSummary{
			Total:      len(created) + len(errs),
			Successful: len(created),
			Failed:     len(errs),
		},
	}
}

// StatusFor maps an error kind to the HTTP status the API exposes.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindReferentialIntegrity:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as JSON. Internal and configuration errors are
// logged and reported with full detail; the client gets a generic message.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"kind", apperr.KindOf(err).String(),
			"error", err,
		)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(status, ErrorResponse{Error: "Internal server error"})
		return
	}

	var e *apperr.Error
	if errors.As(err, &e) {
		c.JSON(status, ErrorResponse{Error: e.Message, Details: e.Fields})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// PublicMessage is the text a client may see for err.
func PublicMessage(err error) string {
	if StatusFor(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
