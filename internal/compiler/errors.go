package compiler

import "fmt"

// CompilationError represents a LaTeX compilation failure. Line and
// Detail come from the first error found in the log, when there is one.
type CompilationError struct {
	Message   string
	Line      int
	Detail    string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		if e.Line > 0 {
			msg = fmt.Sprintf("%s: line %d: %s", msg, e.Line, e.Detail)
		} else {
			msg = fmt.Sprintf("%s: %s", msg, e.Detail)
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", msg)
}

// Summary returns the first log error when known, else the failure message.
func (e *CompilationError) Summary() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// ToolUnavailableError is returned when an external binary is not installed.
type ToolUnavailableError struct {
	Tool  string
	Cause error
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s not found in PATH: install a LaTeX distribution (TeX Live, MiKTeX) or pandoc", e.Tool)
}

func (e *ToolUnavailableError) Unwrap() error {
	return e.Cause
}

// InputError represents unusable input, such as an empty document.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// ConversionError represents a pandoc failure.
type ConversionError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conversion error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("conversion error: %s", e.Message)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}
