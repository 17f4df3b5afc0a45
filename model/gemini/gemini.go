// Package gemini provides an implementation of model.Model using the Google
// Gemini API (google/generative-ai-go). System contents become the model's
// SystemInstruction, assistant turns are sent with role "model" and tool
// results are merged into a single user turn of FunctionResponse parts.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/model"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// ErrMissingAPIKey is returned by NewModel when no key is configured.
var ErrMissingAPIKey = errors.New("gemini: missing GOOGLE_API_KEY or GEMINI_API_KEY")

// Options configure the Gemini model adapter.
type Options struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	APIKey          string // falls back to GOOGLE_API_KEY, then GEMINI_API_KEY
	Endpoint        string // optional API endpoint override
}

// Model wraps the Gemini API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini model with its own client.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions(optFns...)
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns...)}
}

func defaultOptions(optFns ...func(o *Options)) Options {
	opts := Options{
		Model:           DefaultModel,
		Temperature:     0,
		MaxOutputTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Close releases the underlying client.
func (m *Model) Close() error { return m.client.Close() }

// Generate sends the transcript as a chat session and returns one assistant turn.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	system, history, err := buildContents(req.Contents)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, errors.New("gemini: request has no user content")
	}

	gm := m.client.GenerativeModel(m.opts.Model)
	gm.SetTemperature(m.opts.Temperature)
	if m.opts.MaxOutputTokens > 0 {
		gm.SetMaxOutputTokens(m.opts.MaxOutputTokens)
	}
	gm.SystemInstruction = system
	gm.Tools = buildTools(req.Tools)

	cs := gm.StartChat()
	last := history[len(history)-1]
	cs.History = history[:len(history)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	return convertResponse(resp)
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "gemini",
		SupportsTools: true,
	}
}

// buildContents splits system instructions from the chat history and merges
// consecutive tool results into one user turn.
func buildContents(contents []core.Content) (*genai.Content, []*genai.Content, error) {
	var (
		systemParts []genai.Part
		history     []*genai.Content
		toolTurn    *genai.Content
	)
	flush := func() {
		if toolTurn != nil {
			history = append(history, toolTurn)
			toolTurn = nil
		}
	}

	for _, c := range contents {
		switch c.Role {
		case core.RoleSystem:
			if text := c.Text(); text != "" {
				systemParts = append(systemParts, genai.Text(text))
			}
		case core.RoleUser:
			flush()
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(c.Text())}})
		case core.RoleAssistant:
			flush()
			gc, err := assistantContent(c)
			if err != nil {
				return nil, nil, err
			}
			history = append(history, gc)
		case core.RoleTool:
			if toolTurn == nil {
				toolTurn = &genai.Content{Role: "user"}
			}
			for _, fr := range c.FunctionResponses() {
				toolTurn.Parts = append(toolTurn.Parts, functionResponse(fr))
			}
		default:
			return nil, nil, fmt.Errorf("gemini: unsupported role %q", c.Role)
		}
	}
	flush()

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return system, history, nil
}

func assistantContent(c core.Content) (*genai.Content, error) {
	gc := &genai.Content{Role: "model"}
	if text := c.Text(); text != "" {
		gc.Parts = append(gc.Parts, genai.Text(text))
	}
	for _, fc := range c.FunctionCalls() {
		args := map[string]any{}
		if fc.Arguments != "" {
			if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
				return nil, fmt.Errorf("gemini: arguments of %s: %w", fc.Name, err)
			}
		}
		gc.Parts = append(gc.Parts, genai.FunctionCall{Name: fc.Name, Args: args})
	}
	return gc, nil
}

func functionResponse(fr core.FunctionResponse) genai.FunctionResponse {
	payload := map[string]any{"result": fr.Response}
	if fr.IsError() {
		payload = map[string]any{"error": fr.Error}
	}
	return genai.FunctionResponse{Name: fr.Name, Response: payload}
}

// buildTools converts tool definitions to Gemini function declarations.
func buildTools(defs []core.ToolDefinition) []*genai.Tool {
	if len(defs) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(defs))
	for i, def := range defs {
		decls[i] = &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  buildSchema(def),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func buildSchema(def core.ToolDefinition) *genai.Schema {
	props := make(map[string]*genai.Schema, len(def.Parameters))
	for _, p := range def.Parameters {
		props[p.Name] = &genai.Schema{
			Type:        schemaType(p.Type),
			Description: describe(p),
			Enum:        p.Enum,
		}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   def.RequiredNames(),
	}
}

// describe folds range and default hints into the description; Gemini's
// schema has no minimum/maximum fields.
func describe(p core.Parameter) string {
	desc := p.Description
	if p.Minimum != nil && p.Maximum != nil {
		desc += fmt.Sprintf(" (%g-%g)", *p.Minimum, *p.Maximum)
	}
	if p.Default != nil {
		desc += fmt.Sprintf(" Defaults to %v.", p.Default)
	}
	return desc
}

func schemaType(t core.ParamType) genai.Type {
	switch t {
	case core.TypeInteger:
		return genai.TypeInteger
	case core.TypeNumber:
		return genai.TypeNumber
	case core.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// convertResponse maps the first candidate to an assistant turn. Gemini does
// not return call ids, so they are generated here.
func convertResponse(resp *genai.GenerateContentResponse) (*model.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}
	cand := resp.Candidates[0]

	var (
		text  string
		calls []core.FunctionCall
	)
	for _, p := range cand.Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			text += string(v)
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini: encode arguments of %s: %w", v.Name, err)
			}
			calls = append(calls, core.FunctionCall{ID: core.NewID(), Name: v.Name, Arguments: string(args)})
		}
	}

	out := &model.Response{
		Content:      core.NewAssistantContent(text, calls...),
		FinishReason: finishReason(cand.FinishReason, len(calls) > 0),
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func finishReason(r genai.FinishReason, hasCalls bool) string {
	switch {
	case hasCalls:
		return "tool_calls"
	case r == genai.FinishReasonMaxTokens:
		return "length"
	case r == genai.FinishReasonSafety:
		return "safety"
	default:
		return "stop"
	}
}

var (
	_ model.Model = (*Model)(nil)
	_ io.Closer   = (*Model)(nil)
)
