package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/latex"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/resumes"
)

func TestErrUsernameTaken(t *testing.T) {
	err := &ErrUsernameTaken{Username: "jane"}
	assert.Equal(t, "username already registered: jane", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid username or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrPasswordMismatch(t *testing.T) {
	err := &ErrPasswordMismatch{}
	assert.Equal(t, "current password is incorrect", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "username", Message: "required"}
	assert.Equal(t, "validation error: username - required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"conflict", fmt.Errorf("create: %w", db.ErrConflict), http.StatusConflict},
		{"not found", fmt.Errorf("get: %w", db.ErrNotFound), http.StatusNotFound},
		{"section not found", fmt.Errorf("section %q: %w", "x", latex.ErrSectionNotFound), http.StatusNotFound},
		{"not compiled", &resumes.NotCompiledError{ResumeID: "r"}, http.StatusNotFound},
		{"resume validation", &resumes.ValidationError{Field: "name", Message: "is required"}, http.StatusBadRequest},
		{"compile failure", &compiler.CompilationError{Message: "Undefined control sequence", Line: 3}, http.StatusUnprocessableEntity},
		{"compile input", &compiler.InputError{Message: "empty"}, http.StatusBadRequest},
		{"tool missing", &compiler.ToolUnavailableError{Tool: "pandoc"}, http.StatusServiceUnavailable},
		{"llm not configured", fmt.Errorf("failed to reply: %w", llm.ErrNotConfigured), http.StatusServiceUnavailable},
		{"optimizer response", &optimizer.ResponseError{Message: "bad json"}, http.StatusBadGateway},
		{"optimizer input", &optimizer.InputError{Message: "empty"}, http.StatusBadRequest},
		{"unknown persona", &assistant.UnknownPersonaError{Persona: "pirate"}, http.StatusBadRequest},
		{"empty chat message", fmt.Errorf("reply: %w", assistant.ErrEmptyMessage), http.StatusBadRequest},
		{"invalid url", &fetch.Error{URL: "ftp://x", Message: "bad scheme", Invalid: true}, http.StatusBadRequest},
		{"remote failure", &fetch.Error{URL: "https://x", Message: "status 500"}, http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
