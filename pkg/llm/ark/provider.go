// Package ark adapts a Volcengine Ark chat model (via eino) to llm.LLMProvider.
package ark

import (
	"context"
	"fmt"
	"strings"

	"ai-chat-be/pkg/llm"

	einoark "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type ArkProvider struct {
	chatModel model.BaseChatModel
}

var _ llm.LLMProvider = &ArkProvider{}

func NewArkProvider(ctx context.Context, apiKey, baseURL, modelName string) (*ArkProvider, error) {
	if apiKey == "" || modelName == "" {
		return nil, llm.ErrMissingCredentials
	}

	chatModel, err := einoark.NewChatModel(ctx, &einoark.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark chat model: %w", err)
	}
	return NewArkProviderFromModel(chatModel), nil
}

// NewArkProviderFromModel wraps any eino chat model.
func NewArkProviderFromModel(chatModel model.BaseChatModel) *ArkProvider {
	return &ArkProvider{chatModel: chatModel}
}

func toSchemaMessages(history []llm.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "system":
			out = append(out, schema.SystemMessage(msg.Content))
		case "assistant", "model":
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		default:
			out = append(out, schema.UserMessage(msg.Content))
		}
	}
	return out
}

func (p *ArkProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{}, opts...)

	var modelOpts []model.Option
	if options.Temperature > 0 {
		modelOpts = append(modelOpts, model.WithTemperature(float32(options.Temperature)))
	}
	if options.MaxTokens > 0 {
		modelOpts = append(modelOpts, model.WithMaxTokens(options.MaxTokens))
	}
	if options.Model != "" {
		modelOpts = append(modelOpts, model.WithModel(options.Model))
	}

	resp, err := p.chatModel.Generate(ctx, toSchemaMessages(history), modelOpts...)
	if err != nil {
		return "", fmt.Errorf("ark generation failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Content, nil
}

func (p *ArkProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
