// Package rendering provides functionality to render LaTeX resumes from templates.
package rendering

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTemplate is returned for a template ID not in the catalog.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrNoContent is returned when there is nothing to put in the document.
	ErrNoContent = errors.New("no content to render")
)

// TemplateError reports a broken embedded template.
type TemplateError struct {
	ID  string
	Err error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.ID, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }
