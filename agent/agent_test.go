package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/internal/testutil"
	"github.com/hupe1980/supportagent/model"
	"github.com/hupe1980/supportagent/support"
	"github.com/hupe1980/supportagent/tool"
)

// MockModel for failure paths the scripted model cannot express.
type MockModel struct{ mock.Mock }

func (m *MockModel) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.Response)
	return resp, args.Error(1)
}

func (m *MockModel) Info() model.Info { return model.Info{Name: "mock", Provider: "mock"} }

type countingNotifier struct{ calls atomic.Int32 }

func (n *countingNotifier) Notify(context.Context, support.Credentials, string) error {
	n.calls.Add(1)
	return nil
}

func supportRegistry(t *testing.T, n support.Notifier) *tool.Registry {
	t.Helper()
	reg, err := support.NewRegistry(func(o *support.Options) {
		o.Notifier = n
		o.Secrets = func() support.Credentials { return support.Credentials{} }
	})
	require.NoError(t, err)
	return reg
}

func recordTransitions(ts *[]Transition) func(o *Options) {
	return func(o *Options) {
		o.OnTransition = func(tr Transition) { *ts = append(*ts, tr) }
	}
}

func toolResults(tr *core.Transcript) []core.FunctionResponse {
	var out []core.FunctionResponse
	for _, c := range tr.Messages() {
		out = append(out, c.FunctionResponses()...)
	}
	return out
}

func TestRun_DirectReply(t *testing.T) {
	m := model.NewScriptedModel(model.Reply("Your order is on the way."))
	var transitions []Transition
	a := New(m, supportRegistry(t, nil), recordTransitions(&transitions))

	tr := testutil.Seed(t, "sys", "Where is my order?")
	res, err := a.Run(context.Background(), tr)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Transcript.Len())
	assert.Equal(t, 1, res.Turns)
	assert.Empty(t, res.ToolCalls)
	assert.Equal(t, "Your order is on the way.", res.FinalText)
	assert.Equal(t, []Transition{{From: StateAwaitingModel, To: StateDone, Turn: 1}}, transitions)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].Contents, 2)
	assert.Len(t, reqs[0].Tools, 3)
}

func TestRun_RefundRoundTrip(t *testing.T) {
	m := model.NewScriptedModel(
		model.CallTool(support.RefundToolName, `{"item_name":"Chicken Pizza","reason":"cold"}`),
		model.Reply("Refund issued."),
	)
	var transitions []Transition
	a := New(m, supportRegistry(t, nil), recordTransitions(&transitions))

	tr := testutil.Seed(t, "sys", "My pizza was cold")
	res, err := a.Run(context.Background(), tr)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Transcript.Len())
	assert.Equal(t, 2, res.Turns)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, support.RefundToolName, res.ToolCalls[0].Name)
	assert.NoError(t, res.Transcript.Validate())

	results := toolResults(res.Transcript)
	require.Len(t, results, 1)
	assert.Equal(t, res.ToolCalls[0].ID, results[0].ID)
	assert.Equal(t, "SUCCESS: Refund processed for 'Chicken Pizza'. Reason: cold. Amount: 100% credited to wallet.", results[0].Response)

	assert.Equal(t, []Transition{
		{From: StateAwaitingModel, To: StateExecutingTools, Turn: 1},
		{From: StateExecutingTools, To: StateAwaitingModel, Turn: 1},
		{From: StateAwaitingModel, To: StateDone, Turn: 2},
	}, transitions)
}

func TestRun_ToolsRunInOrderAndCompleteBeforeNextModelCall(t *testing.T) {
	checkComplete := func(next model.Step) model.Step {
		return func(call int, req model.Request) (*model.Response, error) {
			assert.NoError(t, core.ValidateMessages(req.Contents), "request %d has unanswered invocations", call)
			return next(call, req)
		}
	}

	m := model.NewScriptedModel(
		checkComplete(model.CallTools(
			core.FunctionCall{ID: "a", Name: support.ContactRiderToolName, Arguments: `{"message":"Where are you?"}`},
			core.FunctionCall{ID: "b", Name: support.RefundToolName, Arguments: `{"item_name":"Fries","reason":"missing","refund_amount_percentage":50}`},
		)),
		checkComplete(model.CallTool(support.EscalateToolName, `{"issue_summary":"rude rider","urgency":"High"}`)),
		checkComplete(model.Reply("All handled.")),
	)
	n := &countingNotifier{}
	a := New(m, supportRegistry(t, n))

	res, err := a.Run(context.Background(), testutil.Seed(t, "sys", "help"))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, 2+3+2+1, res.Transcript.Len())

	names := make([]string, len(res.ToolCalls))
	for i, fc := range res.ToolCalls {
		names[i] = fc.Name
	}
	assert.Equal(t, []string{support.ContactRiderToolName, support.RefundToolName, support.EscalateToolName}, names)

	results := toolResults(res.Transcript)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Contains(t, results[1].Response, "Amount: 50%")
	assert.Equal(t, support.EscalationSimulated, results[2].Response)
	assert.Equal(t, int32(0), n.calls.Load())
}

func TestRun_LoopLimitExceeded(t *testing.T) {
	m := model.NewScriptedModel().WithFallback(model.CallTool(support.ContactRiderToolName, `{"message":"ping"}`))
	a := New(m, supportRegistry(t, nil), func(o *Options) { o.RecursionLimit = 3 })

	_, err := a.Run(context.Background(), testutil.Seed(t, "sys", "loop"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoopLimitExceeded)
	assert.Equal(t, 3, m.Calls())

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 3, runErr.Turns)
	assert.Equal(t, 2+3*2, runErr.Transcript.Len())
	assert.NoError(t, runErr.Transcript.Validate())
}

func TestRun_DefaultRecursionLimit(t *testing.T) {
	m := model.NewScriptedModel().WithFallback(model.CallTool(support.ContactRiderToolName, `{"message":"ping"}`))
	a := New(m, supportRegistry(t, nil), func(o *Options) { o.RecursionLimit = 0 })

	_, err := a.Run(context.Background(), testutil.Seed(t, "sys", "loop"))
	assert.ErrorIs(t, err, ErrLoopLimitExceeded)
	assert.Equal(t, DefaultRecursionLimit, m.Calls())
}

func TestRun_ModelUnavailable(t *testing.T) {
	cause := errors.New("503 service unavailable")
	m := &MockModel{}
	m.On("Generate", mock.Anything, mock.Anything).Return(nil, cause).Once()

	tr := testutil.Seed(t, "sys", "hi")
	_, err := New(m, nil).Run(context.Background(), tr)

	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, tr.Len())
	m.AssertExpectations(t)
}

func TestRun_ModelReturnsNilResponse(t *testing.T) {
	m := &MockModel{}
	m.On("Generate", mock.Anything, mock.Anything).Return(nil, nil).Once()

	_, err := New(m, nil).Run(context.Background(), testutil.Seed(t, "sys", "hi"))
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestRun_ToolErrorsAreReportedToModel(t *testing.T) {
	m := model.NewScriptedModel(
		model.CallTools(
			core.FunctionCall{ID: "u", Name: "cancel_order", Arguments: `{}`},
			core.FunctionCall{ID: "v", Name: support.RefundToolName, Arguments: `{"item_name":"Soup"}`},
		),
		model.Reply("Sorry about that."),
	)

	res, err := New(m, supportRegistry(t, nil)).Run(context.Background(), testutil.Seed(t, "sys", "cancel"))
	require.NoError(t, err)

	results := toolResults(res.Transcript)
	require.Len(t, results, 2)
	assert.True(t, results[0].IsError())
	assert.Contains(t, results[0].Error, tool.CodeUnknownTool)
	assert.True(t, results[1].IsError())
	assert.Contains(t, results[1].Error, tool.CodeValidationError)
	assert.NoError(t, res.Transcript.Validate())

	second := m.Requests()[1].Contents
	last := second[len(second)-1].FunctionResponses()[0]
	assert.Equal(t, "v", last.ID)
	assert.Contains(t, last.Text(), "ERROR: ")
}

func TestRun_StrictToolsFailsRun(t *testing.T) {
	m := model.NewScriptedModel(model.CallTool(support.RefundToolName, `{"item_name":"Soup","reason":"x","refund_amount_percentage":150}`))
	a := New(m, supportRegistry(t, nil), func(o *Options) { o.StrictTools = true })

	_, err := a.Run(context.Background(), testutil.Seed(t, "sys", "refund"))
	assert.ErrorIs(t, err, ErrToolInvocation)
	assert.ErrorIs(t, err, tool.ErrInvalidArguments)
	assert.Equal(t, 1, m.Calls())
}

func TestRun_RecoversToolPanic(t *testing.T) {
	boom := tool.NewFunctionTool(core.ToolDefinition{Name: "boom"}, func(context.Context, map[string]any) (string, error) {
		panic("kaboom")
	})
	reg, err := tool.NewRegistry([]tool.Tool{boom})
	require.NoError(t, err)

	m := model.NewScriptedModel(model.CallTool("boom", ""), model.Reply("recovered"))
	res, err := New(m, reg).Run(context.Background(), testutil.Seed(t, "sys", "go"))
	require.NoError(t, err)

	results := toolResults(res.Transcript)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, tool.CodeExecutionError)
	assert.Contains(t, results[0].Error, "kaboom")
	assert.Equal(t, "recovered", res.FinalText)
}

func TestRun_ToolTimeout(t *testing.T) {
	slow := tool.NewFunctionTool(core.ToolDefinition{Name: "slow"}, func(ctx context.Context, _ map[string]any) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	reg, err := tool.NewRegistry([]tool.Tool{slow})
	require.NoError(t, err)

	m := model.NewScriptedModel(model.CallTool("slow", "{}"), model.Reply("done"))
	a := New(m, reg, func(o *Options) { o.ToolTimeout = 10 * time.Millisecond })

	res, err := a.Run(context.Background(), testutil.Seed(t, "sys", "go"))
	require.NoError(t, err)
	results := toolResults(res.Transcript)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "deadline exceeded")
}

func TestRun_RejectsInvalidSeed(t *testing.T) {
	m := model.NewScriptedModel(model.Reply("never"))

	pending, err := core.NewTranscript(
		core.NewUserContent("hi"),
		testutil.NewContentBuilder().Call("c1", support.RefundToolName, `{}`).Build(),
	)
	require.NoError(t, err)

	_, err = New(m, nil).Run(context.Background(), pending)
	assert.ErrorIs(t, err, ErrInvalidTranscript)
	assert.ErrorIs(t, err, core.ErrUnansweredInvocation)

	empty, err := core.NewTranscript()
	require.NoError(t, err)
	_, err = New(m, nil).Run(context.Background(), empty)
	assert.ErrorIs(t, err, ErrInvalidTranscript)

	_, err = New(m, nil).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidTranscript)

	assert.Equal(t, 0, m.Calls())
}

func TestRun_RejectsDuplicateCallIDsFromModel(t *testing.T) {
	m := model.NewScriptedModel(model.CallTools(
		core.FunctionCall{ID: "dup", Name: support.ContactRiderToolName, Arguments: `{"message":"a"}`},
		core.FunctionCall{ID: "dup", Name: support.ContactRiderToolName, Arguments: `{"message":"b"}`},
	))

	_, err := New(m, supportRegistry(t, nil)).Run(context.Background(), testutil.Seed(t, "sys", "x"))
	assert.ErrorIs(t, err, ErrInvalidTranscript)
	assert.ErrorIs(t, err, core.ErrDuplicateInvocation)
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := model.NewScriptedModel(model.Reply("never"))
	_, err := New(m, nil).Run(ctx, testutil.Seed(t, "sys", "x"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.Calls())
}

func TestRun_CancelDuringTools(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := tool.NewFunctionTool(core.ToolDefinition{Name: "stop"}, func(context.Context, map[string]any) (string, error) {
		cancel()
		return "stopped", nil
	})
	reg, err := tool.NewRegistry([]tool.Tool{stop})
	require.NoError(t, err)

	m := model.NewScriptedModel(model.CallTools(
		core.FunctionCall{ID: "1", Name: "stop"},
		core.FunctionCall{ID: "2", Name: "stop"},
	))
	_, err = New(m, reg).Run(ctx, testutil.Seed(t, "sys", "x"))

	assert.ErrorIs(t, err, context.Canceled)
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 1, len(toolResults(runErr.Transcript)))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "AwaitingModel", StateAwaitingModel.String())
	assert.Equal(t, "ExecutingTools", StateExecutingTools.String())
	assert.Equal(t, "Done", StateDone.String())
	assert.Equal(t, "Unknown", State(42).String())
}

func TestRunError_Message(t *testing.T) {
	err := &RunError{Kind: ErrLoopLimitExceeded, Turns: 10}
	assert.Equal(t, "agent: loop limit exceeded after 10 turn(s)", err.Error())

	err = &RunError{Kind: ErrModelUnavailable, Err: errors.New("timeout"), Turns: 1}
	assert.Equal(t, "agent: model unavailable after 1 turn(s): timeout", err.Error())
}
