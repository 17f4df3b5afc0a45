// Package core provides the foundational domain types shared by the model
// adapters, the tool registry and the agent loop:
//
//   - Content (a role-tagged message with ordered Parts)
//   - FunctionCall / FunctionResponse (tool invocations and their results)
//   - ToolDefinition / Parameter (declared tool schemas)
//   - Transcript (the append-only conversation state of one agent run)
//
// The package has no knowledge of concrete providers or tools; it only fixes
// the shapes and the referential invariants between them.
package core
