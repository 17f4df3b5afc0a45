package agent

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/logging"
	"github.com/hupe1980/supportagent/tool"
)

// executor runs the function calls of one assistant turn strictly in order
// and emits exactly one FunctionResponse per call. Panics inside tools are
// recovered into EXECUTION_ERROR tool errors.
type executor struct {
	registry *tool.Registry
	timeout  time.Duration
	logger   logging.Logger
	agent    string
}

// execute stops at the first emit error (or cancellation) and returns it;
// responses already emitted stay emitted.
func (e *executor) execute(
	ctx context.Context,
	calls []core.FunctionCall,
	emit func(fc core.FunctionCall, resp core.FunctionResponse, err error) error,
) error {
	batchStart := time.Now()
	for _, fc := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		out, err := e.invoke(ctx, fc)
		e.logger.Info(
			"agent.tool.executed",
			"agent", e.agent,
			"tool", fc.Name,
			"call_id", fc.ID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err != nil,
		)

		resp := core.FunctionResponse{ID: fc.ID, Name: fc.Name, Response: out}
		if err != nil {
			resp.Error = err.Error()
		}
		if err := emit(fc, resp, err); err != nil {
			return err
		}
	}

	e.logger.Debug(
		"agent.tools.batch.complete",
		"agent", e.agent,
		"count", len(calls),
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
	return nil
}

func (e *executor) invoke(ctx context.Context, fc core.FunctionCall) (result string, err error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("agent.tool.panic", "agent", e.agent, "tool", fc.Name, "recover", r)
			result = ""
			err = &tool.ToolError{
				Tool:    fc.Name,
				Message: fmt.Sprintf("panic: %v", r),
				Code:    tool.CodeExecutionError,
				Details: &panicErr{val: r, stack: debug.Stack()},
			}
		}
	}()

	return e.registry.Invoke(ctx, fc.Name, fc.Arguments)
}

// panicErr preserves a recovered panic value and its stack.
type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }
