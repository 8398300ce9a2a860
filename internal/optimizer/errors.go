package optimizer

import "fmt"

// APICallError represents a failed call to the AI provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ResponseError represents AI output that could not be used
type ResponseError struct {
	Message string
	Cause   error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid AI response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid AI response: %s", e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// InputError represents a request the optimizer refuses to send
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}
