package entity

import (
	"errors"
	"time"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

var ErrInvalidMessageRole = errors.New("invalid message role")

func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

// ChatMessage is immutable once stored.
type ChatMessage struct {
	Id        string
	Content   string
	Role      MessageRole
	Timestamp time.Time
}

type Chat struct {
	Id        string
	Title     string
	Messages  []*ChatMessage
	UserId    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendMessage adds a message at the end; ids are assigned by the repository on save.
func (c *Chat) AppendMessage(role MessageRole, content string, at time.Time) *ChatMessage {
	msg := &ChatMessage{
		Content:   content,
		Role:      role,
		Timestamp: at,
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

func (c *Chat) LastMessage() *ChatMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// ChatSummary is the list projection of a Chat without message bodies.
type ChatSummary struct {
	Id        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
