package core

import "fmt"

const (
	ErrCodeLLMGeneration    = "LLM_GENERATION_ERROR"
	ErrCodeInvalidResponse  = "INVALID_LLM_RESPONSE"
	ErrCodeSchemaValidation = "SCHEMA_VALIDATION_ERROR"
	ErrCodeToolExecution    = "TOOL_EXECUTION_ERROR"
	ErrCodeToolNotFound     = "TOOL_NOT_FOUND"
	ErrCodeUnknownCategory  = "UNKNOWN_CATEGORY"
	ErrCodeInvalidConfig    = "INVALID_CONFIGURATION"
)

// Error carries a machine-readable code and structured details alongside
// the wrapped cause.
type Error struct {
	Err     error          `json:"-"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func NewError(err error, code string, details map[string]any) *Error {
	return &Error{Err: err, Code: code, Details: details}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
