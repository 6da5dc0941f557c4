package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/screeniq/internal/flow"
)

func TestHTTPStatus(t *testing.T) {
	type sample struct {
		Name string `validate:"required"`
	}
	validationErr := validator.New().Struct(sample{})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", &ErrNotFound{Kind: "session", ID: "s1"}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "email", Message: "bad"}, http.StatusBadRequest},
		{"validator errors", fmt.Errorf("invalid intake: %w", validationErr), http.StatusBadRequest},
		{"closed job", &ErrJobClosed{JobID: "j1"}, http.StatusConflict},
		{"conflict", &ErrConflict{Kind: "job", ID: "j1"}, http.StatusConflict},
		{"camera denied", fmt.Errorf("%w: nope", flow.ErrCameraDenied), http.StatusForbidden},
		{"invalid answer", flow.ErrInvalidAnswer, http.StatusUnprocessableEntity},
		{"closed session", flow.ErrClosed, http.StatusGone},
		{"not ready", flow.ErrNotReady, http.StatusConflict},
		{"invalid transition", fmt.Errorf("%w: in intake", flow.ErrInvalidTransition), http.StatusConflict},
		{"camera required", flow.ErrCameraRequired, http.StatusConflict},
		{"not answered", flow.ErrNotAnswered, http.StatusConflict},
		{"no more questions", flow.ErrNoMoreQuestions, http.StatusConflict},
		{"not last question", flow.ErrNotLastQuestion, http.StatusConflict},
		{"already submitted", flow.ErrAlreadySubmitted, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "session not found: s1", (&ErrNotFound{Kind: "session", ID: "s1"}).Error())
	assert.Equal(t, "validation error: email - bad", (&ErrValidation{Field: "email", Message: "bad"}).Error())
	assert.Equal(t, "job j1 is not accepting applications", (&ErrJobClosed{JobID: "j1"}).Error())
	assert.Equal(t, "job already exists: j1", (&ErrConflict{Kind: "job", ID: "j1"}).Error())
}
