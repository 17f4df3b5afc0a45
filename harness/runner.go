package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/supportagent/agent"
	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/logging"
)

// Options configures a Runner.
type Options struct {
	Instruction Instruction
	Evaluator   Evaluator // scores each result; nil disables
	Parallelism int       // concurrent cases; values < 1 run sequentially
	Logger      logging.Logger
}

// Runner executes cases against an agent.
type Runner struct {
	agent *agent.Agent
	opts  Options
}

// Result is the outcome of one case.
type Result struct {
	Case     Case
	Actions  []string // invoked tool names in order
	Response string
	Turns    int
	Duration time.Duration
	Err      error    // set when the run failed; Response then holds FallbackReply
	Verdict  *Verdict // nil when the case carries no expectation
}

// NewRunner creates a runner using the ZomaBot instruction by default.
func NewRunner(a *agent.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Instruction: NewInstructionFromText(SystemInstruction),
		Evaluator:   ActionEvaluator{},
		Parallelism: 1,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runner{agent: a, opts: opts}
}

// Seed builds the initial transcript for a case.
func (r *Runner) Seed(c Case) (*core.Transcript, error) {
	system, err := r.opts.Instruction.Resolve(c)
	if err != nil {
		return nil, fmt.Errorf("harness: instruction for case %s: %w", c.ID, err)
	}
	prompt, err := FormatContextPrompt(c)
	if err != nil {
		return nil, err
	}
	return core.NewTranscript(core.NewSystemContent(system), core.NewUserContent(prompt))
}

// RunCase runs a single case. Agent failures are reported on the Result; the
// returned error is non-nil only when the case could not be started or ctx
// was canceled.
func (r *Runner) RunCase(ctx context.Context, c Case) (Result, error) {
	tr, err := r.Seed(c)
	if err != nil {
		return Result{Case: c}, err
	}

	out, err := r.run(ctx, c, tr)
	if err != nil {
		return out, err
	}
	if r.opts.Evaluator != nil {
		if out.Verdict, err = r.opts.Evaluator.Evaluate(out); err != nil {
			return out, fmt.Errorf("harness: evaluate case %s: %w", c.ID, err)
		}
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, c Case, tr *core.Transcript) (Result, error) {
	start := time.Now()
	res, err := r.agent.Run(ctx, tr)
	out := Result{Case: c, Duration: time.Since(start)}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out, err
		}
		var runErr *agent.RunError
		if errors.As(err, &runErr) {
			out.Actions = actions(runErr.Transcript)
			out.Turns = runErr.Turns
		}
		out.Response = FallbackReply
		out.Err = err
		r.opts.Logger.Warn("harness.case.failed", "case", string(c.ID), "error", err.Error())
		return out, nil
	}

	out.Actions = actions(res.Transcript)
	out.Response = res.FinalText
	out.Turns = res.Turns
	r.opts.Logger.Info(
		"harness.case.complete",
		"case", string(c.ID),
		"actions", len(out.Actions),
		"turns", out.Turns,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

// Run executes all cases with bounded parallelism. Results keep the input order.
func (r *Runner) Run(ctx context.Context, cases []Case) ([]Result, error) {
	results := make([]Result, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for i, c := range cases {
		g.Go(func() error {
			res, err := r.RunCase(gctx, c)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// actions lists invoked tool names in transcript order.
func actions(tr *core.Transcript) []string {
	if tr == nil {
		return nil
	}
	calls := tr.FunctionCalls()
	names := make([]string, len(calls))
	for i, fc := range calls {
		names[i] = fc.Name
	}
	return names
}
