package harness

import (
	"fmt"

	"github.com/hupe1980/supportagent/internal/util"
)

// SystemInstruction is the ZomaBot support persona.
const SystemInstruction = `You are ZomaBot, an automated support agent.
Use the provided SYSTEM DATA to validate the user's claims.
- If items are missing/bad, use 'process_refund'.
- If safety/tech issue, use 'escalate_to_support_admin'.
- If delivery instruction/location, use 'contact_delivery_partner'.
- Otherwise, answer politely.`

// FallbackReply is shown to the customer when a run cannot finish.
const FallbackReply = "Sorry, we are having trouble handling your request right now. A support agent will follow up shortly."

const contextTemplate = `SYSTEM DATA (Hidden from user, visible to Agent):
- Order placed at: {{ .Context.TimePlaced | default "unknown" }}
- Items: {{ .Context.Items }}
- ETA: {{ .Context.ETA | default "unknown" }}
- Status: {{ .Context.Status | default "unknown" }}

USER COMPLAINT/QUERY:
{{ quote .UserInput }}`

// FormatContextPrompt merges the user query with the order context.
func FormatContextPrompt(c Case) (string, error) {
	out, err := util.RenderTemplate(contextTemplate, c)
	if err != nil {
		return "", fmt.Errorf("harness: render prompt for case %s: %w", c.ID, err)
	}
	return out, nil
}
