package main

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/model"
	"github.com/hupe1980/supportagent/support"
)

var (
	refundWords   = regexp.MustCompile(`(?i)\b(burnt|burned|missing|cold|spilled|stale|refund|money back)\b`)
	escalateWords = regexp.MustCompile(`(?i)\b(crash\w*|smoke|fire|safety|unsafe|harass\w*)\b`)
	riderWords    = regexp.MustCompile(`(?i)\b(rider|gate|location|where are you|wrong address)\b`)
	queryPattern  = regexp.MustCompile(`(?s)USER COMPLAINT/QUERY:\s*(.*)$`)
	itemsPattern  = regexp.MustCompile(`(?m)^- Items: (.*)$`)
)

// dryRunModel routes the customer query to a tool by keyword and then
// confirms the tool outcome, so the full loop runs without a model endpoint.
func dryRunModel() *model.ScriptedModel {
	return model.NewScriptedModel().WithFallback(func(_ int, req model.Request) (*model.Response, error) {
		last := req.Contents[len(req.Contents)-1]
		if last.Role == core.RoleTool {
			return reply("Thanks for your patience. " + last.FunctionResponses()[0].Text()), nil
		}

		prompt := last.Text()
		query := prompt
		if m := queryPattern.FindStringSubmatch(prompt); m != nil {
			query = strings.Trim(strings.TrimSpace(m[1]), `"`)
		}

		switch {
		case escalateWords.MatchString(query):
			return call(support.EscalateToolName, map[string]any{"issue_summary": query, "urgency": "Critical"}), nil
		case refundWords.MatchString(query):
			item := "order"
			if m := itemsPattern.FindStringSubmatch(prompt); m != nil && strings.TrimSpace(m[1]) != "" {
				item = strings.TrimSpace(strings.Split(m[1], ",")[0])
			}
			return call(support.RefundToolName, map[string]any{"item_name": item, "reason": query}), nil
		case riderWords.MatchString(query):
			return call(support.ContactRiderToolName, map[string]any{"message": query}), nil
		default:
			return reply("Thanks for reaching out! Your order is being handled and will arrive as scheduled."), nil
		}
	})
}

func reply(text string) *model.Response {
	return &model.Response{Content: core.NewAssistantContent(text), FinishReason: "stop"}
}

func call(name string, args map[string]any) *model.Response {
	raw, _ := json.Marshal(args)
	return &model.Response{
		Content:      core.NewAssistantContent("", core.FunctionCall{Name: name, Arguments: string(raw)}),
		FinishReason: "tool_calls",
	}
}
