// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Choreo.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Choreo errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeConfig indicates the runtime configuration was malformed.
	CodeConfig ErrorCode = "CONFIG_ERROR"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates authorization failed.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeDiscoveryError indicates tool discovery against an MCP server failed.
	CodeDiscoveryError ErrorCode = "DISCOVERY_ERROR"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"
)

// ChoreoError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type ChoreoError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *ChoreoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *ChoreoError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *ChoreoError) MarshalJSON() ([]byte, error) {
	type Alias ChoreoError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new ChoreoError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *ChoreoError {
	return &ChoreoError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *ChoreoError) WithContext(key string, value interface{}) *ChoreoError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *ChoreoError) WithRecoverable(recoverable bool) *ChoreoError {
	e.Recoverable = recoverable
	return e
}

// AsChoreoError attempts to convert an error to a ChoreoError.
// Returns the error as ChoreoError if it is one, or wraps it otherwise.
func AsChoreoError(err error) *ChoreoError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*ChoreoError); ok {
		return ce
	}
	return New(CodeInternal, "wrapped error", err)
}
