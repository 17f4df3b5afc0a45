// Package provider builds a model.Model from configuration.
package provider

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaisdk "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"

	"github.com/hupe1980/supportagent/config"
	"github.com/hupe1980/supportagent/model"
	"github.com/hupe1980/supportagent/model/anthropic"
	"github.com/hupe1980/supportagent/model/gemini"
	"github.com/hupe1980/supportagent/model/openai"
)

// New returns the model selected by cfg.Provider.
func New(ctx context.Context, cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = float32(cfg.Temperature)
			if cfg.MaxTokens > 0 {
				o.MaxOutputTokens = int32(cfg.MaxTokens) //nolint:gosec // bounded by configuration
			}
			o.APIKey = cfg.APIKey
			o.Endpoint = cfg.BaseURL
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.ProviderOpenAI:
		var opts []openaioption.RequestOption
		if cfg.APIKey != "" {
			opts = append(opts, openaioption.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
		}
		client := openaisdk.NewClient(opts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.MaxTokens)
			}
		}), nil
	case config.ProviderAnthropic:
		var opts []anthropicoption.RequestOption
		if cfg.APIKey != "" {
			opts = append(opts, anthropicoption.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
		}
		client := anthropicsdk.NewClient(opts...)
		return anthropic.NewModelFromClient(&client, func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.MaxTokens)
			}
		}), nil
	default:
		return nil, fmt.Errorf("provider: unknown model provider %q", cfg.Provider)
	}
}
