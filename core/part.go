package core

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string `json:"text"`
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool invocation requested by the model.
type FunctionCall struct {
	ID        string `json:"id"`                  // Unique within one assistant message
	Name      string `json:"name"`                // Registered tool name
	Arguments string `json:"arguments,omitempty"` // JSON object text
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall `json:"function_call"`
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id"`              // Matches originating FunctionCall ID
	Name     string `json:"name"`            // Function name
	Response string `json:"response"`        // Result text
	Error    string `json:"error,omitempty"` // Populated when the invocation itself was rejected or failed
}

// IsError reports whether the response carries a tool-level error.
func (r FunctionResponse) IsError() bool { return r.Error != "" }

// Text returns the text the model should see for this response.
func (r FunctionResponse) Text() string {
	if r.Error != "" {
		return "ERROR: " + r.Error
	}
	return r.Response
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse `json:"function_response"`
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}
