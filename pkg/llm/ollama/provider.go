// Package ollama talks to a local Ollama server over /api/chat.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-chat-be/pkg/llm"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "http://localhost:11434"

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *resty.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client:    resty.New().SetTimeout(120 * time.Second),
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// toOllamaRole maps the legacy "model" role onto ollama's "assistant".
func toOllamaRole(role string) string {
	if role == "model" {
		return "assistant"
	}
	return role
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Model: o.ModelName, Temperature: 0.7}, opts...)

	req := ollamaChatRequest{
		Model:    options.Model,
		Messages: make([]ollamaMessage, 0, len(history)),
		Options: &ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}
	for _, m := range history {
		req.Messages = append(req.Messages, ollamaMessage{Role: toOllamaRole(m.Role), Content: m.Content})
	}

	endpoint := o.BaseURL + "/api/chat"
	var out ollamaChatResponse
	resp, err := o.Client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		ForceContentType("application/json").
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &llm.HTTPStatusError{StatusCode: resp.StatusCode(), URL: endpoint, Body: llm.TruncateBody(resp.Body())}
	}

	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
