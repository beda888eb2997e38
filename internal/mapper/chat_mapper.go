package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"github.com/google/uuid"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	messages := make([]*entity.ChatMessage, len(c.Messages))
	for i := range c.Messages {
		messages[i] = m.MessageToEntity(&c.Messages[i])
	}

	return &entity.Chat{
		Id:        c.Id.String(),
		Title:     c.Title,
		Messages:  messages,
		UserId:    c.UserId,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ChatToModel leaves Messages empty; messages are written separately so that
// existing rows are never rewritten.
func (m *ChatMapper) ChatToModel(c *entity.Chat) (*model.Chat, error) {
	if c == nil {
		return nil, nil
	}

	id := uuid.Nil
	if c.Id != "" {
		parsed, err := uuid.Parse(c.Id)
		if err != nil {
			return nil, err
		}
		id = parsed
	}

	return &model.Chat{
		Id:        id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

func (m *ChatMapper) ChatToSummary(c *model.Chat) *entity.ChatSummary {
	if c == nil {
		return nil
	}
	return &entity.ChatSummary{
		Id:        c.Id.String(),
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        msg.Id.String(),
		Content:   msg.Content,
		Role:      entity.MessageRole(msg.Role),
		Timestamp: msg.Timestamp,
	}
}

func (m *ChatMapper) MessageToModel(chatId uuid.UUID, position int, msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	id, err := uuid.Parse(msg.Id)
	if err != nil {
		id = uuid.New()
	}
	return &model.ChatMessage{
		Id:        id,
		ChatId:    chatId,
		Position:  position,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
}
