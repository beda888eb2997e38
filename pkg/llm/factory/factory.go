package factory

import (
	"context"
	"fmt"
	"time"

	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/ark"
	"ai-chat-be/pkg/llm/cloudflare"
	"ai-chat-be/pkg/llm/ollama"
	"ai-chat-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Provider string
	Model    string
	Timeout  time.Duration

	CloudflareAccountID string
	CloudflareAPIToken  string
	CloudflareEndpoint  string

	OllamaBaseURL string

	OpenAIKey     string
	OpenAIBaseURL string

	ArkAPIKey  string
	ArkBaseURL string
}

// NewLLMProvider builds the configured provider and bounds every call by cfg.Timeout.
func NewLLMProvider(ctx context.Context, cfg ProviderConfig) (llm.LLMProvider, error) {
	var provider llm.LLMProvider

	switch cfg.Provider {
	case "cloudflare", "":
		provider = cloudflare.NewCloudflareProvider(
			cfg.CloudflareAccountID,
			cfg.CloudflareAPIToken,
			cloudflare.WithEndpoint(cfg.CloudflareEndpoint),
			cloudflare.WithModel(cfg.Model),
		)
	case "ollama":
		model := cfg.Model
		if model == "" {
			model = "llama3"
		}
		provider = ollama.NewOllamaProvider(cfg.OllamaBaseURL, model)
	case "openai":
		p, err := openai.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		provider = p
	case "ark":
		p, err := ark.NewArkProvider(ctx, cfg.ArkAPIKey, cfg.ArkBaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return llm.WithTimeout(provider, cfg.Timeout), nil
}
