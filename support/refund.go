package support

import (
	"context"
	"fmt"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/tool"
)

// Compile-time check that *RefundTool implements tool.Tool.
var _ tool.Tool = (*RefundTool)(nil)

// DefaultRefundPercentage is applied when the model omits the amount.
const DefaultRefundPercentage = 100

// RefundTool issues a (simulated) refund for an order item. No payment
// provider is contacted.
type RefundTool struct{}

// Definition implements tool.Tool.
func (RefundTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name:        RefundToolName,
		Description: "Issue a refund for a specific item.",
		Parameters: []core.Parameter{
			{
				Name:        "item_name",
				Type:        core.TypeString,
				Description: `The name of the item (e.g., "Chicken Pizza").`,
				Required:    true,
			},
			{
				Name:        "reason",
				Type:        core.TypeString,
				Description: `Why the refund is needed (e.g., "Burnt", "Missing", "Spilled").`,
				Required:    true,
			},
			{
				Name:        "refund_amount_percentage",
				Type:        core.TypeInteger,
				Description: "100 for full refund, 50 for partial.",
				Default:     DefaultRefundPercentage,
				Minimum:     core.Float(0),
				Maximum:     core.Float(100),
			},
		},
	}
}

// Call implements tool.Tool.
func (RefundTool) Call(_ context.Context, args map[string]any) (string, error) {
	item, _ := args["item_name"].(string)
	reason, _ := args["reason"].(string)
	pct, ok := args["refund_amount_percentage"].(int64)
	if !ok {
		pct = DefaultRefundPercentage
	}
	return fmt.Sprintf("SUCCESS: Refund processed for '%s'. Reason: %s. Amount: %d%% credited to wallet.", item, reason, pct), nil
}
