package support

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/supportagent/core"
	"github.com/hupe1980/supportagent/logging"
	"github.com/hupe1980/supportagent/tool"
)

var _ tool.Tool = (*EscalateTool)(nil)

// Default environment variables holding the escalation secrets.
const (
	DefaultTokenEnv  = "TELEGRAM_BOT_TOKEN"
	DefaultChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Result texts returned by EscalateTool.
const (
	EscalationSimulated = "ESCALATED: Admin notified (Simulation Mode - No Token Found)."
	EscalationDelivered = "ESCALATED: Admin has been notified via Telegram channel."
	escalationFailedFmt = "ESCALATION FAILED: %v"
)

// Credentials are the two secrets needed to reach the admin channel.
type Credentials struct {
	Token  string
	ChatID string
}

// Complete reports whether both secrets are present.
func (c Credentials) Complete() bool { return c.Token != "" && c.ChatID != "" }

// SecretSource yields the credentials at call time.
type SecretSource func() Credentials

// EnvSecrets reads the credentials from the named environment variables on
// every call, so rotating them does not require a restart.
func EnvSecrets(tokenEnv, chatIDEnv string) SecretSource {
	if tokenEnv == "" {
		tokenEnv = DefaultTokenEnv
	}
	if chatIDEnv == "" {
		chatIDEnv = DefaultChatIDEnv
	}
	return func() Credentials {
		return Credentials{Token: os.Getenv(tokenEnv), ChatID: os.Getenv(chatIDEnv)}
	}
}

// Notifier delivers an alert to the human support channel.
type Notifier interface {
	Notify(ctx context.Context, creds Credentials, text string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, creds Credentials, text string) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, creds Credentials, text string) error {
	return f(ctx, creds, text)
}

// EscalateTool hands an issue to a human admin through a Notifier. Missing
// credentials switch it into simulation mode; delivery failures are reported
// as result text, never as errors.
type EscalateTool struct {
	notifier Notifier
	secrets  SecretSource
	logger   logging.Logger
}

// NewEscalateTool creates the escalation tool. A nil secrets source reads the
// default environment variables.
func NewEscalateTool(notifier Notifier, secrets SecretSource, logger logging.Logger) *EscalateTool {
	if secrets == nil {
		secrets = EnvSecrets(DefaultTokenEnv, DefaultChatIDEnv)
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &EscalateTool{notifier: notifier, secrets: secrets, logger: logger}
}

// Definition implements tool.Tool.
func (t *EscalateTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name: EscalateToolName,
		Description: "Escalate to a human admin via Telegram. " +
			"Use ONLY for: Severe safety issues, App crashes, or when the user is extremely abusive.",
		Parameters: []core.Parameter{
			{Name: "issue_summary", Type: core.TypeString, Description: "Short summary of the issue.", Required: true},
			{Name: "urgency", Type: core.TypeString, Description: "How urgent the issue is (e.g., Low, High, Critical).", Required: true},
		},
	}
}

// Call implements tool.Tool.
func (t *EscalateTool) Call(ctx context.Context, args map[string]any) (string, error) {
	summary, _ := args["issue_summary"].(string)
	urgency, _ := args["urgency"].(string)

	creds := t.secrets()
	if !creds.Complete() || t.notifier == nil {
		t.logger.Info("support.escalation.simulated", "urgency", urgency)
		return EscalationSimulated, nil
	}

	if err := t.notifier.Notify(ctx, creds, AlertText(urgency, summary)); err != nil {
		t.logger.Warn("support.escalation.failed", "urgency", urgency, "error", err.Error())
		return fmt.Sprintf(escalationFailedFmt, err), nil
	}

	t.logger.Info("support.escalation.delivered", "urgency", urgency)
	return EscalationDelivered, nil
}

// AlertText formats the message sent to the admin channel.
func AlertText(urgency, summary string) string {
	return fmt.Sprintf("🚨 **ADMIN ALERT** 🚨\nUrgency: %s\nIssue: %s", urgency, summary)
}
