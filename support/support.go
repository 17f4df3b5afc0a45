package support

import (
	"github.com/hupe1980/supportagent/logging"
	"github.com/hupe1980/supportagent/tool"
)

// Options configures the support tool set.
type Options struct {
	// Notifier delivers escalations. Nil keeps escalation in simulation mode.
	Notifier Notifier
	// Secrets yields escalation credentials at call time (defaults to the
	// TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID environment variables).
	Secrets SecretSource
	Logger  logging.Logger
}

// Tools returns the support tools in canonical Kind order.
func Tools(optFns ...func(o *Options)) []tool.Tool {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make([]tool.Tool, 0, len(Kinds()))
	for _, k := range Kinds() {
		switch k {
		case KindRefund:
			tools = append(tools, RefundTool{})
		case KindContactRider:
			tools = append(tools, ContactRiderTool{})
		case KindEscalate:
			tools = append(tools, NewEscalateTool(opts.Notifier, opts.Secrets, opts.Logger))
		}
	}
	return tools
}

// NewRegistry wraps the support tools in a tool.Registry.
func NewRegistry(optFns ...func(o *Options)) (*tool.Registry, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return tool.NewRegistry(Tools(optFns...), func(o *tool.RegistryOptions) {
		o.Logger = opts.Logger
	})
}
