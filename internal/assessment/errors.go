package assessment

import "fmt"

// APICallError represents a failed call to the LLM provider
type APICallError struct {
	Operation string
	Cause     error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("%s: API call failed: %v", e.Operation, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a response that could not be decoded or did not match its schema
type ParseError struct {
	Operation string
	Content   string
	Cause     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %v", e.Operation, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
