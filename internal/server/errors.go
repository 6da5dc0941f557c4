package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/screeniq/internal/flow"
)

// ErrNotFound indicates a missing job, session, candidate or application.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrJobClosed indicates a session was requested for a closed job.
type ErrJobClosed struct {
	JobID string
}

func (e *ErrJobClosed) Error() string {
	return fmt.Sprintf("job %s is not accepting applications", e.JobID)
}

// ErrConflict indicates the resource already exists.
type ErrConflict struct {
	Kind string
	ID   string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *ErrNotFound
		validation *ErrValidation
		closedJob  *ErrJobClosed
		conflict   *ErrConflict
		fields     validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fields):
		return http.StatusBadRequest
	case errors.As(err, &closedJob), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, flow.ErrCameraDenied):
		return http.StatusForbidden
	case errors.Is(err, flow.ErrInvalidAnswer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, flow.ErrClosed):
		return http.StatusGone
	case errors.Is(err, flow.ErrNotReady),
		errors.Is(err, flow.ErrInvalidTransition),
		errors.Is(err, flow.ErrCameraRequired),
		errors.Is(err, flow.ErrNotAnswered),
		errors.Is(err, flow.ErrNoMoreQuestions),
		errors.Is(err, flow.ErrNotLastQuestion),
		errors.Is(err, flow.ErrAlreadySubmitted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
