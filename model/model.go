package model

import (
	"context"

	"github.com/hupe1980/supportagent/core"
)

// Request captures the normalized model input: the full transcript
// (including system instructions) and the tools the model may invoke.
type Request struct {
	Contents []core.Content        `json:"contents"`
	Tools    []core.ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one complete assistant turn. Content.Role is always assistant;
// it carries text, one or more function calls, or both.
type Response struct {
	ID           string       `json:"id,omitempty"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "gemini", "openai", "anthropic", "scripted"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the agent loop to drive generation.
// Implementations return an error when the endpoint is unreachable or answers
// with an error status; they do not retry.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// EnsureCallIDs assigns generated ids to function calls that lack one and
// returns the updated content. Some providers (Gemini) never return ids.
func EnsureCallIDs(c core.Content) core.Content {
	out := c.Clone()
	for i, p := range out.Parts {
		fc, ok := p.(core.FunctionCallPart)
		if !ok || fc.FunctionCall.ID != "" {
			continue
		}
		fc.FunctionCall.ID = core.NewID()
		out.Parts[i] = fc
	}
	return out
}
