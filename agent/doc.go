// Package agent implements the support agent control loop.
//
// An Agent alternates between asking the model for the next assistant turn
// and executing the tools that turn requests:
//
//	AwaitingModel --(text only)--------> Done
//	AwaitingModel --(function calls)---> ExecutingTools --> AwaitingModel
//
// Every assistant message is appended to the transcript before its tools run,
// tools run one at a time in the order the model listed them and each outcome
// is appended as exactly one tool result. The number of AwaitingModel entries
// is bounded by Options.RecursionLimit.
//
// The Agent holds only immutable configuration; concurrent Run calls are safe
// as long as each uses its own transcript.
package agent
