package testutil

import (
	"testing"

	"github.com/hupe1980/supportagent/core"
)

// ContentBuilder provides a fluent helper for constructing assistant turns in tests.
// Example:
//
//	c := NewContentBuilder().Text("checking").Call("c1", "process_refund", `{"item_name":"Pizza"}`).Build()
type ContentBuilder struct {
	text  string
	calls []core.FunctionCall
}

// NewContentBuilder creates a builder for an assistant message.
func NewContentBuilder() *ContentBuilder { return &ContentBuilder{} }

// Text sets the assistant text (chainable).
func (b *ContentBuilder) Text(t string) *ContentBuilder { b.text = t; return b }

// Call appends a function call with the given id, name and JSON arguments (chainable).
func (b *ContentBuilder) Call(id, name, args string) *ContentBuilder {
	b.calls = append(b.calls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// Build constructs the assistant core.Content.
func (b *ContentBuilder) Build() core.Content {
	return core.NewAssistantContent(b.text, b.calls...)
}

// Seed returns a transcript holding a system instruction and one user message.
func Seed(t testing.TB, system, user string) *core.Transcript {
	t.Helper()
	tr, err := core.NewTranscript(core.NewSystemContent(system), core.NewUserContent(user))
	if err != nil {
		t.Fatalf("seed transcript: %v", err)
	}
	return tr
}
