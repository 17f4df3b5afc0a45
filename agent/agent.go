package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/logging"
	"github.com/hupe1980/supportagent/model"
	"github.com/hupe1980/supportagent/tool"
)

// DefaultRecursionLimit bounds the model calls of one run.
const DefaultRecursionLimit = 10

// Options configures an Agent.
type Options struct {
	Name           string
	RecursionLimit int           // max AwaitingModel entries per run
	ModelTimeout   time.Duration // per Generate call; 0 disables
	ToolTimeout    time.Duration // per tool call; 0 disables
	StrictTools    bool          // fail the run on tool errors instead of reporting them to the model
	Logger         logging.Logger
	OnTransition   func(Transition)
}

// Agent drives a model and a tool registry over a transcript.
type Agent struct {
	model    model.Model
	registry *tool.Registry
	opts     Options
	exec     *executor
}

// Result is the outcome of a successful run.
type Result struct {
	Transcript *core.Transcript
	Turns      int                 // model calls made
	ToolCalls  []core.FunctionCall // executed invocations in order
	FinalText  string
}

// New creates an agent. A nil registry exposes no tools.
func New(m model.Model, reg *tool.Registry, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Name:           "agent",
		RecursionLimit: DefaultRecursionLimit,
		ModelTimeout:   60 * time.Second,
		ToolTimeout:    15 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RecursionLimit < 1 {
		opts.RecursionLimit = DefaultRecursionLimit
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if reg == nil {
		reg, _ = tool.NewRegistry(nil)
	}

	return &Agent{
		model:    m,
		registry: reg,
		opts:     opts,
		exec: &executor{
			registry: reg,
			timeout:  opts.ToolTimeout,
			logger:   opts.Logger,
			agent:    opts.Name,
		},
	}
}

// Name returns the configured agent name.
func (a *Agent) Name() string { return a.opts.Name }

// Run executes the control loop until the model answers without requesting
// tools. The transcript is owned by the run and appended in place; on
// failure the returned *RunError carries it in its partial state.
func (a *Agent) Run(ctx context.Context, tr *core.Transcript) (*Result, error) {
	if tr == nil || tr.Len() == 0 {
		return nil, &RunError{Kind: ErrInvalidTranscript, Err: errors.New("empty transcript"), Transcript: tr}
	}
	if err := tr.Validate(); err != nil {
		return nil, &RunError{Kind: ErrInvalidTranscript, Err: err, Transcript: tr}
	}

	runID := core.NewID()
	logger := logging.With(a.opts.Logger, "agent", a.opts.Name, "run", runID)
	logger.Info("agent.run.start", "messages", tr.Len(), "recursion_limit", a.opts.RecursionLimit)

	var (
		state = StateAwaitingModel
		turns int
		calls []core.FunctionCall
		start = time.Now()
	)
	fail := func(kind, err error) (*Result, error) {
		logger.Warn("agent.run.failed", "kind", kind.Error(), "turns", turns, "error", err)
		return nil, &RunError{Kind: kind, Err: err, Transcript: tr, Turns: turns}
	}
	transition := func(to State) {
		if a.opts.OnTransition != nil {
			a.opts.OnTransition(Transition{From: state, To: to, Turn: turns})
		}
		logger.Debug("agent.state", "from", state.String(), "to", to.String(), "turn", turns)
		state = to
	}

	for {
		switch state {
		case StateAwaitingModel:
			if turns >= a.opts.RecursionLimit {
				return fail(ErrLoopLimitExceeded, fmt.Errorf("limit of %d model calls reached", a.opts.RecursionLimit))
			}
			if err := ctx.Err(); err != nil {
				return fail(err, nil)
			}
			turns++
			logger.Debug("agent.turn.start", "turn", turns)

			msg, err := a.generate(ctx, tr, logger)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return fail(ctxErr, err)
				}
				return fail(ErrModelUnavailable, err)
			}
			if err := tr.Append(msg); err != nil {
				return fail(ErrInvalidTranscript, err)
			}

			if msg.HasFunctionCalls() {
				transition(StateExecutingTools)
			} else {
				transition(StateDone)
			}

		case StateExecutingTools:
			last, _ := tr.Last()
			err := a.exec.execute(ctx, last.FunctionCalls(), func(fc core.FunctionCall, resp core.FunctionResponse, callErr error) error {
				if callErr != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					if a.opts.StrictTools {
						return &RunError{Kind: ErrToolInvocation, Err: callErr, Transcript: tr, Turns: turns}
					}
					logger.Warn("agent.tool.error", "tool", fc.Name, "call_id", fc.ID, "error", callErr.Error())
				}
				calls = append(calls, fc)
				return tr.Append(core.NewToolResultContent(resp))
			})
			if err != nil {
				var runErr *RunError
				if errors.As(err, &runErr) {
					logger.Warn("agent.run.failed", "kind", runErr.Kind.Error(), "turns", turns, "error", runErr.Err)
					return nil, runErr
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return fail(err, nil)
				}
				return fail(ErrInvalidTranscript, err)
			}
			transition(StateAwaitingModel)

		case StateDone:
			last, _ := tr.Last()
			logger.Info(
				"agent.run.complete",
				"turns", turns,
				"tool_calls", len(calls),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return &Result{
				Transcript: tr,
				Turns:      turns,
				ToolCalls:  calls,
				FinalText:  last.Text(),
			}, nil
		}
	}
}

// generate performs one model call over the full transcript and normalizes
// the returned turn into an assistant message with call ids.
func (a *Agent) generate(ctx context.Context, tr *core.Transcript, logger logging.Logger) (core.Content, error) {
	if a.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.model.Generate(ctx, model.Request{
		Contents: tr.Messages(),
		Tools:    a.registry.Definitions(),
	})

	tokens := 0
	if resp != nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	logging.LogLLMCall(logger, a.model.Info().Name, tokens, time.Since(start), err)

	if err != nil {
		return core.Content{}, err
	}
	if resp == nil {
		return core.Content{}, errors.New("model returned no response")
	}

	msg := model.EnsureCallIDs(resp.Content)
	msg.Role = core.RoleAssistant
	return msg, nil
}
