package harness

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportagent/agent"
	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/model"
	"github.com/hupe1980/supportagent/support"
)

func newAgent(t *testing.T, m model.Model, optFns ...func(o *agent.Options)) *agent.Agent {
	t.Helper()
	reg, err := support.NewRegistry(func(o *support.Options) {
		o.Secrets = func() support.Credentials { return support.Credentials{} }
	})
	require.NoError(t, err)
	return agent.New(m, reg, optFns...)
}

// keywordModel picks a tool from the user prompt and answers once results arrive.
func keywordModel() model.Model {
	step := func(_ int, req model.Request) (*model.Response, error) {
		last := req.Contents[len(req.Contents)-1]
		if last.Role == core.RoleTool {
			return &model.Response{Content: core.NewAssistantContent("Done, anything else?")}, nil
		}
		prompt := last.Text()
		switch {
		case strings.Contains(prompt, "burnt"):
			return model.CallTool(support.RefundToolName, `{"item_name":"Chicken Pizza","reason":"Burnt"}`)(0, req)
		case strings.Contains(prompt, "Gate"):
			return model.CallTool(support.ContactRiderToolName, `{"message":"Come to Gate 3"}`)(0, req)
		case strings.Contains(prompt, "smoke"):
			return model.CallTool(support.EscalateToolName, `{"issue_summary":"smoke","urgency":"Critical"}`)(0, req)
		default:
			return model.Reply("Your food arrives at 12:35.")(0, req)
		}
	}
	return model.NewScriptedModel().WithFallback(step)
}

func TestRunner_Seed(t *testing.T) {
	r := NewRunner(newAgent(t, model.NewScriptedModel()))

	tr, err := r.Seed(Case{ID: "1", UserInput: "hi"})
	require.NoError(t, err)

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, SystemInstruction, msgs[0].Text())
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Text(), `"hi"`)
}

func TestRunner_RunFixtures(t *testing.T) {
	cases, err := LoadCases("testdata/cases.json")
	require.NoError(t, err)

	r := NewRunner(newAgent(t, keywordModel()), func(o *Options) { o.Parallelism = 4 })
	results, err := r.Run(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, []string{support.RefundToolName}, results[0].Actions)
	assert.Equal(t, []string{support.ContactRiderToolName}, results[1].Actions)
	assert.Equal(t, []string{support.EscalateToolName}, results[2].Actions)
	assert.Empty(t, results[3].Actions)

	for i, res := range results {
		assert.Equal(t, cases[i].ID, res.Case.ID)
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, "Your food arrives at 12:35.", results[3].Response)
	assert.Equal(t, 2, results[0].Turns)
}

func TestRunner_FailuresUseFallbackReply(t *testing.T) {
	loop := model.NewScriptedModel().WithFallback(model.CallTool(support.ContactRiderToolName, `{"message":"ping"}`))
	r := NewRunner(newAgent(t, loop, func(o *agent.Options) { o.RecursionLimit = 2 }))

	res, err := r.RunCase(context.Background(), Case{ID: "1", UserInput: "loop"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, agent.ErrLoopLimitExceeded)
	assert.Equal(t, FallbackReply, res.Response)
	assert.Equal(t, []string{support.ContactRiderToolName, support.ContactRiderToolName}, res.Actions)

	down := model.NewScriptedModel(model.Fail(errors.New("503")))
	res, err = NewRunner(newAgent(t, down)).RunCase(context.Background(), Case{ID: "2", UserInput: "hi"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, agent.ErrModelUnavailable)
	assert.Equal(t, FallbackReply, res.Response)
}

func TestRunner_InstructionError(t *testing.T) {
	r := NewRunner(newAgent(t, model.NewScriptedModel()), func(o *Options) {
		o.Instruction = NewInstructionFromFunc(func(Case) (string, error) { return "", errors.New("no prompt") })
	})

	_, err := r.Run(context.Background(), []Case{{ID: "1"}})
	assert.Error(t, err)
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(newAgent(t, model.NewScriptedModel(model.Reply("x"))))
	_, err := r.Run(ctx, []Case{{ID: "1", UserInput: "hi"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ParallelismBound(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	release := make(chan struct{})
	step := func(_ int, _ model.Request) (*model.Response, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()
		<-release
		mu.Lock()
		active--
		mu.Unlock()
		return &model.Response{Content: core.NewAssistantContent("ok")}, nil
	}
	m := model.NewScriptedModel().WithFallback(step)
	r := NewRunner(newAgent(t, m), func(o *Options) { o.Parallelism = 2 })

	cases := make([]Case, 6)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Run(context.Background(), cases)
	}()
	for i := 0; i < len(cases); i++ {
		release <- struct{}{}
	}
	<-done

	assert.LessOrEqual(t, maxSeen, 2)
	assert.Equal(t, 6, m.Calls())
}

func TestWriteReport(t *testing.T) {
	results := []Result{
		{
			Case: Case{
				ID:        "1",
				UserInput: "burnt pizza",
				Context:   OrderContext{Status: "Delivered", Items: Items{"Chicken Pizza", "Coke"}},
			},
			Actions:  []string{support.RefundToolName},
			Response: "Refunded.",
		},
		{
			Case:     Case{ID: "2", UserInput: "eta?", Context: OrderContext{Status: "Preparing", Items: Items{"Dosa"}}},
			Response: "Soon.",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, results))

	want := "Loaded 2 test cases.\n\n" +
		rule + "\n" +
		"TEST CASE #1\n" +
		"INPUT: burnt pizza\n" +
		"CTX:   Status: Delivered | Items: Chicken Pizza, Coke\n" +
		"--------------------\n" +
		"ACTION TAKEN: process_refund\n" +
		"RESPONSE:     Refunded.\n" +
		rule + "\n\n" +
		rule + "\n" +
		"TEST CASE #2\n" +
		"INPUT: eta?\n" +
		"CTX:   Status: Preparing | Items: Dosa\n" +
		"--------------------\n" +
		"ACTION TAKEN: None (Direct Reply)\n" +
		"RESPONSE:     Soon.\n" +
		rule + "\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteResult_IncludesError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, Result{Response: FallbackReply, Err: errors.New("boom")}))
	assert.Contains(t, buf.String(), "ERROR:        boom")
}

func TestRunner_EvaluatesExpectedActions(t *testing.T) {
	cases, err := LoadCases("testdata/cases.json")
	require.NoError(t, err)

	results, err := NewRunner(newAgent(t, keywordModel())).Run(context.Background(), cases)
	require.NoError(t, err)

	for _, res := range results {
		require.NotNil(t, res.Verdict, "case %s", res.Case.ID)
		assert.True(t, res.Verdict.Passed, "case %s: %s", res.Case.ID, res.Verdict.Reason)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, results))
	assert.Contains(t, buf.String(), "EVALUATION:   PASS")
	assert.True(t, strings.HasSuffix(buf.String(), "PASSED: 4/4\n"))
}
