package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/internal/util"
	"github.com/hupe1980/supportagent/logging"
)

// ErrDuplicateTool is returned when two tools share a name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// Registry holds a fixed, ordered set of tools. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
	logger logging.Logger
}

// NewRegistry builds a registry from tools in presentation order.
func NewRegistry(tools []Tool, optFns ...func(o *RegistryOptions)) (*Registry, error) {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r := &Registry{
		tools:  make([]Tool, 0, len(tools)),
		byName: make(map[string]Tool, len(tools)),
		logger: opts.Logger,
	}
	for _, t := range tools {
		name := t.Definition().Name
		if name == "" {
			return nil, fmt.Errorf("tool: registry: tool without name")
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("tool: registry: %w: %q", ErrDuplicateTool, name)
		}
		r.byName[name] = t
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// Definitions returns the tool definitions in registration order.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, len(r.tools))
	for i, t := range r.tools {
		defs[i] = t.Definition()
	}
	return defs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Definition().Name
	}
	return names
}

// Lookup returns the named tool.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Invoke resolves name, validates the JSON object arguments against the
// tool's schema and executes it.
//
// Error Semantics:
//
//	unknown name                    -> *ToolError{Code: "UNKNOWN_TOOL"}
//	bad JSON / schema violation     -> *ToolError{Code: "VALIDATION_ERROR"}
//	*ToolError returned by the tool -> forwarded unchanged
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		r.logger.Warn("tool.call.unknown", "tool", name)
		return "", &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("tool %q is not registered (available: %s)", name, strings.Join(r.Names(), ", ")),
			Code:    CodeUnknownTool,
		}
	}

	args, err := decodeArguments(arguments)
	if err != nil {
		r.logger.Warn("tool.call.validation_failed", "tool", name, "error", err.Error())
		return "", &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("arguments are not a JSON object: %v", err),
			Code:    CodeValidationError,
			Details: err,
		}
	}

	def := t.Definition()
	normalized, err := util.ValidateParameters(args, def.Parameters)
	if err != nil {
		r.logger.Warn("tool.call.validation_failed", "tool", name, "error", err.Error())
		return "", &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidationError,
			Details: err,
		}
	}

	start := time.Now()
	r.logger.Debug("tool.call.start", "tool", name)

	result, err := t.Call(ctx, normalized)
	if err != nil {
		var toolErr *ToolError
		if !errors.As(err, &toolErr) {
			toolErr = &ToolError{Tool: name, Message: err.Error(), Code: CodeExecutionError, Details: err}
		}
		logging.LogToolCall(r.logger, name, time.Since(start), toolErr)
		return "", toolErr
	}

	logging.LogToolCall(r.logger, name, time.Since(start), nil)
	return result, nil
}

func decodeArguments(arguments string) (map[string]any, error) {
	if strings.TrimSpace(arguments) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, err
	}
	if args == nil { // literal null
		args = map[string]any{}
	}
	return args, nil
}
