// Package cloudflare talks to the Workers AI REST endpoint.
package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-chat-be/pkg/llm"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultEndpoint = "https://api.cloudflare.com/client/v4/accounts"
	DefaultModel    = "@cf/meta/llama-3-8b-instruct"
)

type CloudflareProvider struct {
	Endpoint  string
	AccountID string
	APIToken  string
	ModelName string
	Client    *resty.Client
}

var _ llm.LLMProvider = &CloudflareProvider{}

type Option func(*CloudflareProvider)

func WithEndpoint(endpoint string) Option {
	return func(p *CloudflareProvider) {
		if endpoint != "" {
			p.Endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

func WithModel(model string) Option {
	return func(p *CloudflareProvider) {
		if model != "" {
			p.ModelName = model
		}
	}
}

func WithClient(client *resty.Client) Option {
	return func(p *CloudflareProvider) {
		p.Client = client
	}
}

func NewCloudflareProvider(accountID, apiToken string, opts ...Option) *CloudflareProvider {
	p := &CloudflareProvider{
		Endpoint:  DefaultEndpoint,
		AccountID: accountID,
		APIToken:  apiToken,
		ModelName: DefaultModel,
		Client:    resty.New().SetTimeout(2 * llm.DefaultTimeout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type cfMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cfRequest struct {
	Messages    []cfMessage `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
}

type cfResponse struct {
	Success *bool `json:"success"`
	Result  *struct {
		Response *string `json:"response"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (p *CloudflareProvider) url(model string) string {
	return fmt.Sprintf("%s/%s/ai/run/%s", p.Endpoint, p.AccountID, model)
}

func (p *CloudflareProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if p.AccountID == "" || p.APIToken == "" {
		return "", llm.ErrMissingCredentials
	}

	options := llm.ApplyOptions(llm.Options{}, opts...)
	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := cfRequest{
		Messages:    make([]cfMessage, len(history)),
		MaxTokens:   options.MaxTokens,
		Temperature: options.Temperature,
	}
	for i, msg := range history {
		payload.Messages[i] = cfMessage{Role: msg.Role, Content: msg.Content}
	}

	url := p.url(model)
	resp, err := p.Client.R().
		SetContext(ctx).
		SetAuthToken(p.APIToken).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("cloudflare request failed: %w", err)
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &llm.HTTPStatusError{
			StatusCode: resp.StatusCode(),
			URL:        url,
			Body:       llm.TruncateBody(resp.Body()),
		}
	}

	var out cfResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("unmarshal cloudflare response: %w", err)
	}

	if out.Success != nil && !*out.Success {
		msg := "unknown error"
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return "", fmt.Errorf("cloudflare reported failure: %s", msg)
	}

	if out.Result == nil || out.Result.Response == nil || strings.TrimSpace(*out.Result.Response) == "" {
		return "", llm.ErrEmptyResponse
	}

	return *out.Result.Response, nil
}

func (p *CloudflareProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
