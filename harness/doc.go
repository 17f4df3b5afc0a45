// Package harness runs fixture-driven support conversations through an
// agent and reports the actions taken and the final reply for each case.
package harness
