package core

import (
	"errors"
	"fmt"
)

var (
	// ErrOrphanToolResult is returned when a tool result does not answer an
	// earlier, still unanswered invocation.
	ErrOrphanToolResult = errors.New("tool result without matching invocation")
	// ErrDuplicateInvocation is returned when an invocation id is reused.
	ErrDuplicateInvocation = errors.New("duplicate invocation id")
	// ErrUnansweredInvocation is returned when an invocation has no result before
	// the next non-tool message or the end of the history.
	ErrUnansweredInvocation = errors.New("invocation without result")
	// ErrMalformedContent is returned for a message that violates its role's shape.
	ErrMalformedContent = errors.New("malformed content")
)

// Transcript is the ordered, append-only message history of one agent run.
// It is not safe for concurrent use; a run owns its transcript exclusively.
type Transcript struct {
	messages []Content
	pending  []string        // unanswered invocation ids, in request order
	seen     map[string]bool // every invocation id ever appended
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(seed ...Content) (*Transcript, error) {
	t := &Transcript{seen: map[string]bool{}}
	for _, c := range seed {
		if err := t.Append(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Append adds a message, enforcing referential integrity of tool results. Only
// tool results may follow an invocation until every pending one is answered.
func (t *Transcript) Append(c Content) error {
	if t.seen == nil {
		t.seen = map[string]bool{}
	}

	if c.Role != RoleTool && len(t.pending) > 0 {
		return fmt.Errorf("%w: %s message while %v pending", ErrUnansweredInvocation, c.Role, t.pending)
	}

	switch c.Role {
	case RoleSystem, RoleUser:
		if len(c.FunctionCalls()) > 0 || len(c.FunctionResponses()) > 0 {
			return fmt.Errorf("%w: %s message carries tool parts", ErrMalformedContent, c.Role)
		}
	case RoleAssistant:
		calls := c.FunctionCalls()
		for i, fc := range calls {
			if fc.ID == "" {
				return fmt.Errorf("%w: invocation %q has no id", ErrMalformedContent, fc.Name)
			}
			if t.seen[fc.ID] {
				return fmt.Errorf("%w: %s", ErrDuplicateInvocation, fc.ID)
			}
			for _, other := range calls[:i] {
				if other.ID == fc.ID {
					return fmt.Errorf("%w: %s", ErrDuplicateInvocation, fc.ID)
				}
			}
		}
		for _, fc := range calls {
			t.seen[fc.ID] = true
			t.pending = append(t.pending, fc.ID)
		}
	case RoleTool:
		responses := c.FunctionResponses()
		if len(responses) != 1 {
			return fmt.Errorf("%w: tool message needs exactly one result, got %d", ErrMalformedContent, len(responses))
		}
		id := responses[0].ID
		idx := t.pendingIndex(id)
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrOrphanToolResult, id)
		}
		t.pending = append(t.pending[:idx], t.pending[idx+1:]...)
	default:
		return fmt.Errorf("%w: unknown role %q", ErrMalformedContent, c.Role)
	}

	t.messages = append(t.messages, c.Clone())
	return nil
}

func (t *Transcript) pendingIndex(id string) int {
	for i, p := range t.pending {
		if p == id {
			return i
		}
	}
	return -1
}

// Messages returns a copy of the history.
func (t *Transcript) Messages() []Content {
	out := make([]Content, len(t.messages))
	for i, c := range t.messages {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int { return len(t.messages) }

// Last returns the most recent message.
func (t *Transcript) Last() (Content, bool) {
	if len(t.messages) == 0 {
		return Content{}, false
	}
	return t.messages[len(t.messages)-1].Clone(), true
}

// Pending returns the ids of invocations that have not been answered yet.
func (t *Transcript) Pending() []string {
	out := make([]string, len(t.pending))
	copy(out, t.pending)
	return out
}

// FunctionCalls returns every invocation in the transcript in order.
func (t *Transcript) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, c := range t.messages {
		calls = append(calls, c.FunctionCalls()...)
	}
	return calls
}

// Validate checks the whole history: every invocation is answered exactly once
// by a later tool result and no tool result lacks a preceding invocation.
func (t *Transcript) Validate() error {
	return ValidateMessages(t.messages)
}

// ValidateMessages applies the Transcript invariants to an arbitrary slice.
func ValidateMessages(msgs []Content) error {
	requested := map[string]bool{}
	answered := map[string]bool{}
	var order []string
	open := 0

	for i, c := range msgs {
		if c.Role != RoleTool && open > 0 {
			return fmt.Errorf("message %d: %w: %s message before all results", i, ErrUnansweredInvocation, c.Role)
		}
		for _, fc := range c.FunctionCalls() {
			if requested[fc.ID] {
				return fmt.Errorf("message %d: %w: %s", i, ErrDuplicateInvocation, fc.ID)
			}
			requested[fc.ID] = true
			order = append(order, fc.ID)
			open++
		}
		for _, fr := range c.FunctionResponses() {
			if !requested[fr.ID] || answered[fr.ID] {
				return fmt.Errorf("message %d: %w: %q", i, ErrOrphanToolResult, fr.ID)
			}
			answered[fr.ID] = true
			open--
		}
	}

	for _, id := range order {
		if !answered[id] {
			return fmt.Errorf("%w: %s", ErrUnansweredInvocation, id)
		}
	}
	return nil
}
