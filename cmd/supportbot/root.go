package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/supportagent/config"
	"github.com/hupe1980/supportagent/logging"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           "supportbot",
		Short:         "Automated customer support agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading config")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(runCmd(&flags), askCmd(&flags), toolsCmd(&flags))
	return cmd
}

// loadConfig resolves .env, the config file and flag overrides.
func loadConfig(flags *globalFlags) (config.Config, logging.Logger, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return config.Config{}, nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.Load(flags.configPath); err != nil {
			return config.Config{}, nil, err
		}
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.NewSlogLogger(level, cfg.Log.Format, nil), nil
}
