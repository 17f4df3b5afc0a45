// Package tool implements the tool calling subsystem that lets the agent
// invoke structured capabilities (refunds, notifications, side effects) with
// schema validated arguments, consistent error handling and declared
// definitions for LLM guidance.
package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide a unique snake_case name and a description that tells the model when to use it
//   - Declare every accepted parameter in Definition
//   - Report domain outcomes (including soft failures) as result text
//   - Be safe for concurrent use
type Tool interface {
	// Definition returns the name, description and parameter schema presented to the model.
	Definition() core.ToolDefinition

	// Call executes the tool with arguments already validated and normalized
	// against Definition().Parameters (defaults applied, integers as int64).
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Error codes carried by ToolError.
const (
	CodeUnknownTool     = "UNKNOWN_TOOL"
	CodeValidationError = "VALIDATION_ERROR"
	CodeExecutionError  = "EXECUTION_ERROR"
)

var (
	// ErrUnknownTool matches ToolErrors for names that are not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments matches ToolErrors for arguments violating the schema.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrExecution matches ToolErrors raised by the tool implementation itself.
	ErrExecution = errors.New("tool execution failed")
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur while resolving or executing a tool.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details error  `json:"details,omitempty"` // Underlying cause
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *ToolError) Unwrap() error { return e.Details }

// Is maps error codes onto the package sentinels.
func (e *ToolError) Is(target error) bool {
	switch target {
	case ErrUnknownTool:
		return e.Code == CodeUnknownTool
	case ErrInvalidArguments:
		return e.Code == CodeValidationError
	case ErrExecution:
		return e.Code == CodeExecutionError
	}
	return false
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
