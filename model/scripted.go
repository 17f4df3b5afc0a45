package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/supportagent/core"
)

// Step produces one scripted response for the n-th call (0-based).
type Step func(call int, req Request) (*Response, error)

// ScriptedModel is a deterministic in-memory Model useful for tests and dry
// runs. Each Generate call consumes the next Step; once the script is
// exhausted the Fallback step (if any) is used, otherwise an error is returned.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	steps    []Step
	fallback Step
	requests []Request
}

// NewScriptedModel constructs a ScriptedModel running the given steps in order.
func NewScriptedModel(steps ...Step) *ScriptedModel {
	return &ScriptedModel{
		info:  Info{Name: "scripted", Provider: "scripted", SupportsTools: true},
		steps: steps,
	}
}

// WithFallback sets the step used after the script is exhausted.
func (m *ScriptedModel) WithFallback(s Step) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = s
	return m
}

// Generate implements Model.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	call := len(m.requests)
	m.requests = append(m.requests, cloneRequest(req))
	step := m.fallback
	if call < len(m.steps) {
		step = m.steps[call]
	}
	m.mu.Unlock()

	if step == nil {
		return nil, fmt.Errorf("scripted model: no step for call %d", call+1)
	}
	resp, err := step(call, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("scripted model: step %d returned no response", call+1)
	}
	resp.Content = EnsureCallIDs(resp.Content)
	return resp, nil
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

// Calls returns the number of Generate calls made so far.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func cloneRequest(req Request) Request {
	contents := make([]core.Content, len(req.Contents))
	for i, c := range req.Contents {
		contents[i] = c.Clone()
	}
	tools := make([]core.ToolDefinition, len(req.Tools))
	copy(tools, req.Tools)
	return Request{Contents: contents, Tools: tools}
}

// Reply is a Step returning a plain text answer.
func Reply(text string) Step {
	return func(int, Request) (*Response, error) {
		return &Response{Content: core.NewAssistantContent(text), FinishReason: "stop"}, nil
	}
}

// CallTool is a Step requesting one tool invocation with JSON arguments.
func CallTool(name, arguments string) Step {
	return CallTools(core.FunctionCall{Name: name, Arguments: arguments})
}

// CallTools is a Step requesting several invocations in order. Missing ids
// are generated.
func CallTools(calls ...core.FunctionCall) Step {
	return func(int, Request) (*Response, error) {
		cp := make([]core.FunctionCall, len(calls))
		copy(cp, calls)
		return &Response{Content: core.NewAssistantContent("", cp...), FinishReason: "tool_calls"}, nil
	}
}

// Fail is a Step returning err.
func Fail(err error) Step {
	return func(int, Request) (*Response, error) { return nil, err }
}
