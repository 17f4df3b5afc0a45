// Package model defines the provider-agnostic abstractions for interacting
// with language models.
//
// Core goals:
//   - One request/response shape for every provider (full transcript in, one assistant turn out)
//   - Normalized tool invocation representation (core.FunctionCall)
//   - Deterministic scripted model for tests and dry runs (ScriptedModel)
//
// Providers (Gemini, OpenAI, Anthropic) implement the Model interface in
// sub-packages so the agent loop stays decoupled from vendor SDKs.
package model
