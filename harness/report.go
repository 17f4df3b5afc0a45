package harness

import (
	"fmt"
	"io"
	"strings"
)

const rule = "============================================================"

// DirectReply is reported when a case invoked no tools.
const DirectReply = "None (Direct Reply)"

// ActionSummary renders the actions of a result.
func (r Result) ActionSummary() string {
	if len(r.Actions) == 0 {
		return DirectReply
	}
	return strings.Join(r.Actions, ", ")
}

// WriteReport prints every result in fixture order.
func WriteReport(w io.Writer, results []Result) error {
	if _, err := fmt.Fprintf(w, "Loaded %d test cases.\n\n", len(results)); err != nil {
		return err
	}
	for _, r := range results {
		if err := WriteResult(w, r); err != nil {
			return err
		}
	}
	if evaluated, passed := Summary(results); evaluated > 0 {
		if _, err := fmt.Fprintf(w, "PASSED: %d/%d\n", passed, evaluated); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult prints one result block.
func WriteResult(w io.Writer, r Result) error {
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "TEST CASE #%s\n", r.Case.ID)
	fmt.Fprintf(&b, "INPUT: %s\n", r.Case.UserInput)
	fmt.Fprintf(&b, "CTX:   Status: %s | Items: %s\n", r.Case.Context.Status, r.Case.Context.Items)
	fmt.Fprintln(&b, "--------------------")
	fmt.Fprintf(&b, "ACTION TAKEN: %s\n", r.ActionSummary())
	fmt.Fprintf(&b, "RESPONSE:     %s\n", r.Response)
	if r.Err != nil {
		fmt.Fprintf(&b, "ERROR:        %v\n", r.Err)
	}
	if v := r.Verdict; v != nil {
		if v.Passed {
			fmt.Fprintln(&b, "EVALUATION:   PASS")
		} else {
			fmt.Fprintf(&b, "EVALUATION:   FAIL (%s)\n", v.Reason)
		}
	}
	fmt.Fprintf(&b, "%s\n\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
