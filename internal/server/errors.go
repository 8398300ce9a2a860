// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/latex"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/resumes"
)

// ErrUsernameTaken indicates the username is already registered
type ErrUsernameTaken struct {
	Username string
}

func (e *ErrUsernameTaken) Error() string {
	return fmt.Sprintf("username already registered: %s", e.Username)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		usernameTaken *ErrUsernameTaken
		invalidCreds  *ErrInvalidCredentials
		mismatch      *ErrPasswordMismatch
		validation    *ErrValidation
		resumeInput   *resumes.ValidationError
		notCompiled   *resumes.NotCompiledError
		compileErr    *compiler.CompilationError
		compileInput  *compiler.InputError
		conversion    *compiler.ConversionError
		toolMissing   *compiler.ToolUnavailableError
		optInput      *optimizer.InputError
		optResponse   *optimizer.ResponseError
		optAPI        *optimizer.APICallError
		persona       *assistant.UnknownPersonaError
		fetchErr      *fetch.Error
		templateErr   *rendering.TemplateError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &usernameTaken), errors.Is(err, db.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &invalidCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.Is(err, db.ErrNotFound), errors.Is(err, latex.ErrSectionNotFound), errors.As(err, &notCompiled):
		return http.StatusNotFound
	case errors.As(err, &compileErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &toolMissing), errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &validation), errors.As(err, &resumeInput), errors.As(err, &compileInput),
		errors.As(err, &optInput), errors.As(err, &persona), errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, rendering.ErrUnknownTemplate), errors.Is(err, rendering.ErrNoContent):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		if fetchErr.Invalid {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.As(err, &optResponse), errors.As(err, &optAPI):
		return http.StatusBadGateway
	case errors.As(err, &conversion), errors.As(err, &templateErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
