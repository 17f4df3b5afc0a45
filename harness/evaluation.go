package harness

import (
	"fmt"
	"slices"
	"strings"
)

// Verdict is the outcome of evaluating one result.
type Verdict struct {
	Passed bool
	Reason string
}

// Evaluator scores a case result. It returns a nil Verdict when it has
// nothing to check for the case.
type Evaluator interface {
	Evaluate(Result) (*Verdict, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(Result) (*Verdict, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(r Result) (*Verdict, error) { return f(r) }

// ActionEvaluator compares invoked tools against Case.ExpectedActions.
// A failed run never passes.
type ActionEvaluator struct{}

// Evaluate implements Evaluator.
func (ActionEvaluator) Evaluate(r Result) (*Verdict, error) {
	want := r.Case.ExpectedActions
	if want == nil {
		return nil, nil
	}
	if r.Err != nil {
		return &Verdict{Reason: fmt.Sprintf("run failed: %v", r.Err)}, nil
	}
	if !slices.Equal(want, r.Actions) {
		return &Verdict{Reason: fmt.Sprintf("expected [%s], got [%s]", strings.Join(want, ", "), strings.Join(r.Actions, ", "))}, nil
	}
	return &Verdict{Passed: true}, nil
}

// Summary counts evaluated and passed results.
func Summary(results []Result) (evaluated, passed int) {
	for _, r := range results {
		if r.Verdict == nil {
			continue
		}
		evaluated++
		if r.Verdict.Passed {
			passed++
		}
	}
	return evaluated, passed
}
