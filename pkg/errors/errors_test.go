package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &NotFoundError{Attribute: "color", Value: "Green"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("executing search: %w", &NotFoundError{Attribute: "size", Value: "XL"}), http.StatusNotFound},
		{"invalid input", InvalidInput("bad %s", "thing"), http.StatusBadRequest},
		{"bare invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"already built", ErrAlreadyBuilt, http.StatusConflict},
		{"not ready", fmt.Errorf("%w: deadline", ErrNotReady), http.StatusServiceUnavailable},
		{"cache disabled", ErrCacheDisabled, http.StatusServiceUnavailable},
		{"app error status wins", New(ErrNotFound, http.StatusTeapot, "odd"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Attribute: "color", Value: "Green"}

	assert.Equal(t, `color "Green": not found`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppError(t *testing.T) {
	err := InvalidInput("shirt at position %d is nil", 3)

	assert.Equal(t, "invalid input: shirt at position 3 is nil", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}
