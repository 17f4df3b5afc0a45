package tool

import (
	"context"

	"github.com/hupe1980/supportagent/core"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a Tool.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	def core.ToolDefinition
	fn  func(ctx context.Context, args map[string]any) (string, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit definition and function.
//
// Example:
//
//	echo := NewFunctionTool(
//	  core.ToolDefinition{
//	    Name:        "echo",
//	    Description: "Repeat the message back",
//	    Parameters:  []core.Parameter{{Name: "message", Type: core.TypeString, Required: true}},
//	  },
//	  func(_ context.Context, args map[string]any) (string, error) {
//	    return args["message"].(string), nil
//	  },
//	)
func NewFunctionTool(def core.ToolDefinition, fn func(ctx context.Context, args map[string]any) (string, error)) *FunctionTool {
	return &FunctionTool{def: def, fn: fn}
}

// Definition returns the declared tool definition.
func (t *FunctionTool) Definition() core.ToolDefinition { return t.def }

// Call invokes the wrapped function.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (string, error) {
	return t.fn(ctx, args)
}
