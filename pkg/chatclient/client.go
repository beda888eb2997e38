// Package chatclient is a Go SDK for the chat API plus the local view state a
// front end keeps on top of it.
package chatclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Message struct {
	Id        string    `json:"_id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Client-side only.
	Temporary bool `json:"-"`
	Streaming bool `json:"-"`
}

type Chat struct {
	Id        string    `json:"_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UserId    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Temporary bool `json:"-"`
}

type ChatSummary struct {
	Id        string    `json:"_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SendInput struct {
	// ChatId empty starts a new chat.
	ChatId  string
	Message string
}

// SendResult carries Chat for a new conversation, or Message and ChatId for a
// continued one.
type SendResult struct {
	Chat    *Chat
	Message *Message
	ChatId  string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api: %d %s", e.Status, e.Message)
}

type errorBody struct {
	Message string `json:"message"`
}

type Client struct {
	http   *resty.Client
	userId string
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// NewClient talks to baseURL as userId, authenticating with a bearer token.
func NewClient(baseURL, token, userId string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json").
		SetError(&errorBody{})
	if token != "" {
		rc.SetAuthToken(token)
	}
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc, userId: userId}
}

func (c *Client) UserId() string {
	return c.userId
}

func apiError(resp *resty.Response) error {
	msg := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*errorBody); ok && body.Message != "" {
		msg = body.Message
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

func (c *Client) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	body := map[string]string{
		"message": in.Message,
		"userId":  c.userId,
	}
	if in.ChatId != "" {
		body["chatId"] = in.ChatId
	}

	var out struct {
		Success bool     `json:"success"`
		Chat    *Chat    `json:"chat"`
		Message *Message `json:"message"`
		ChatId  string   `json:"chatId"`
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post("/chats")
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	res := &SendResult{Chat: out.Chat, Message: out.Message, ChatId: out.ChatId}
	if res.Chat != nil && res.ChatId == "" {
		res.ChatId = res.Chat.Id
	}
	return res, nil
}

func (c *Client) ListChats(ctx context.Context) ([]ChatSummary, error) {
	var out struct {
		Chats []ChatSummary `json:"chats"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("userId", c.userId).
		SetResult(&out).
		Get("/chats")
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return out.Chats, nil
}

func (c *Client) GetChat(ctx context.Context, id string) (*Chat, error) {
	var out struct {
		Chat *Chat `json:"chat"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("userId", c.userId).
		SetResult(&out).
		Get("/chats/{id}")
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return out.Chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(map[string]string{"userId": c.userId}).
		Delete("/chats/{id}")
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}
