package main

import (
	"context"
	"io"

	"github.com/hupe1980/supportagent/agent"
	"github.com/hupe1980/supportagent/config"
	"github.com/hupe1980/supportagent/logging"
	"github.com/hupe1980/supportagent/model"
	"github.com/hupe1980/supportagent/model/provider"
	"github.com/hupe1980/supportagent/notify/telegram"
	"github.com/hupe1980/supportagent/support"
)

// buildAgent wires model, tools and escalation transport from cfg. Dry runs
// use a keyword-scripted model and keep escalation in simulation mode. The
// returned release func frees model resources and must be called when done.
func buildAgent(ctx context.Context, cfg config.Config, logger logging.Logger, dryRun bool) (*agent.Agent, func(), error) {
	var (
		m        model.Model
		notifier support.Notifier
	)
	if dryRun {
		m = dryRunModel()
	} else {
		var err error
		if m, err = provider.New(ctx, cfg.Model); err != nil {
			return nil, nil, err
		}
		notifier = telegram.NewSender(func(o *telegram.Options) {
			o.APIServer = cfg.Escalation.APIServer
			o.Logger = logger
		})
	}

	release := releaseModel(m, logger)

	reg, err := support.NewRegistry(func(o *support.Options) {
		o.Notifier = notifier
		o.Secrets = support.EnvSecrets(cfg.Escalation.TokenEnv, cfg.Escalation.ChatIDEnv)
		o.Logger = logger
	})
	if err != nil {
		release()
		return nil, nil, err
	}

	return agent.New(m, reg, func(o *agent.Options) {
		o.Name = "ZomaBot"
		o.RecursionLimit = cfg.Agent.RecursionLimit
		o.ModelTimeout = cfg.Model.Timeout
		o.ToolTimeout = cfg.Agent.ToolTimeout
		o.StrictTools = cfg.Agent.StrictTools
		o.Logger = logger
	}), release, nil
}

// releaseModel returns a func closing m when it holds a client connection.
func releaseModel(m model.Model, logger logging.Logger) func() {
	c, ok := m.(io.Closer)
	if !ok {
		return func() {}
	}
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("supportbot.model.close", "error", err.Error())
		}
	}
}
