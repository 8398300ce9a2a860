package resumes

import "fmt"

// ValidationError indicates an unusable request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotCompiledError is returned when a PDF is requested before the resume
// was ever compiled.
type NotCompiledError struct {
	ResumeID string
}

func (e *NotCompiledError) Error() string {
	return fmt.Sprintf("resume %s has not been compiled", e.ResumeID)
}
