package anthropic

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/model"
)

func TestBuildMessages_GroupsToolResults(t *testing.T) {
	contents := []core.Content{
		core.NewSystemContent("sys"),
		core.NewUserContent("help"),
		core.NewAssistantContent("",
			core.FunctionCall{ID: "t1", Name: "process_refund", Arguments: `{"item_name":"Pizza"}`},
			core.FunctionCall{ID: "t2", Name: "contact_delivery_partner", Arguments: `{"message":"hi"}`},
		),
		core.NewToolResultContent(core.FunctionResponse{ID: "t1", Name: "process_refund", Response: "SUCCESS"}),
		core.NewToolResultContent(core.FunctionResponse{ID: "t2", Name: "contact_delivery_partner", Error: "boom"}),
	}

	msgs, err := buildMessages(contents)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 2)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "t1", msgs[2].Content[0].OfToolResult.ToolUseID)
	require.NotNil(t, msgs[2].Content[1].OfToolResult)
	assert.True(t, msgs[2].Content[1].OfToolResult.IsError.Value)
}

func TestExtractSystemMessage(t *testing.T) {
	blocks := extractSystemMessage([]core.Content{core.NewSystemContent("a"), core.NewUserContent("b")})
	require.Len(t, blocks, 1)
	assert.Equal(t, "a", blocks[0].Text)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]core.ToolDefinition{{
		Name:        "escalate_to_support_admin",
		Description: "escalate",
		Parameters: []core.Parameter{
			{Name: "issue_summary", Type: core.TypeString, Required: true},
			{Name: "urgency", Type: core.TypeString, Required: true},
		},
	}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "escalate_to_support_admin", tools[0].OfTool.Name)
	assert.Equal(t, "escalate", tools[0].OfTool.Description.Value)
	assert.Equal(t, []string{"issue_summary", "urgency"}, tools[0].OfTool.InputSchema.Required)
}

func TestGenerate_ToolUse(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-20241022",
			"stop_reason": "tool_use",
			"content": [
				{"type": "text", "text": "Refunding."},
				{"type": "tool_use", "id": "toolu_1", "name": "process_refund", "input": {"item_name": "Pizza"}}
			],
			"usage": {"input_tokens": 7, "output_tokens": 3}
		}`)
	}))
	t.Cleanup(srv.Close)

	client := anthropic.NewClient(
		option.WithBaseURL(srv.URL),
		option.WithAPIKey("test"),
		option.WithMaxRetries(0),
	)
	m := NewModelFromClient(&client)

	resp, err := m.Generate(t.Context(), model.Request{
		Contents: []core.Content{core.NewSystemContent("sys"), core.NewUserContent("refund please")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Refunding.", resp.Content.Text())
	calls := resp.Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "toolu_1", calls[0].ID)
	assert.JSONEq(t, `{"item_name":"Pizza"}`, calls[0].Arguments)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.TotalTokens)

	assert.Equal(t, float64(0), body["temperature"])
	assert.NotNil(t, body["system"])
}
