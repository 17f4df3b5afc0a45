package agent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/supportagent/core"
)

var (
	// ErrModelUnavailable is the run failure kind when the model endpoint errors.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrLoopLimitExceeded is the run failure kind when the recursion limit is reached.
	ErrLoopLimitExceeded = errors.New("loop limit exceeded")
	// ErrToolInvocation is the run failure kind for tool errors in strict mode.
	ErrToolInvocation = errors.New("tool invocation failed")
	// ErrInvalidTranscript is the run failure kind for seeds or model turns
	// that break transcript integrity.
	ErrInvalidTranscript = errors.New("invalid transcript")
)

// RunError reports a failed run. Kind is one of the sentinels above or a
// context error; Err carries the underlying cause when there is one. The
// transcript holds every message appended before the failure.
type RunError struct {
	Kind       error
	Err        error
	Transcript *core.Transcript
	Turns      int
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent: %v after %d turn(s): %v", e.Kind, e.Turns, e.Err)
	}
	return fmt.Sprintf("agent: %v after %d turn(s)", e.Kind, e.Turns)
}

// Unwrap exposes both Kind and Err to errors.Is / errors.As.
func (e *RunError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
