package support

import (
	"context"
	"fmt"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/tool"
)

var _ tool.Tool = (*ContactRiderTool)(nil)

// ContactRiderTool relays a message to the delivery partner.
type ContactRiderTool struct{}

// Definition implements tool.Tool.
func (ContactRiderTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name: ContactRiderToolName,
		Description: "Send a message to the delivery partner/rider. " +
			"Use this for location issues or 'Where are you?' queries when status is 'Out for Delivery'.",
		Parameters: []core.Parameter{
			{Name: "message", Type: core.TypeString, Description: "The message for the rider.", Required: true},
		},
	}
}

// Call implements tool.Tool.
func (ContactRiderTool) Call(_ context.Context, args map[string]any) (string, error) {
	msg, _ := args["message"].(string)
	return fmt.Sprintf("RIDER_ALERT: Message sent to rider -> '%s'. Rider will call customer shortly.", msg), nil
}
