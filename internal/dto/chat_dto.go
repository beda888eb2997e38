package dto

import (
	"time"
)

// ChatTurnRequest creates a chat when ChatId is empty, otherwise continues it.
type ChatTurnRequest struct {
	Message string `json:"message" validate:"required"`
	UserId  string `json:"userId" validate:"required"`
	ChatId  string `json:"chatId,omitempty"`
}

type DeleteChatRequest struct {
	UserId string `json:"userId"`
}

type MessageResponse struct {
	Id        string    `json:"_id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

type CreatedChat struct {
	Id        string            `json:"_id"`
	Title     string            `json:"title"`
	Messages  []MessageResponse `json:"messages"`
	CreatedAt time.Time         `json:"createdAt"`
}

type CreateChatResponse struct {
	Success bool        `json:"success"`
	Chat    CreatedChat `json:"chat"`
}

type ContinueChatResponse struct {
	Success bool            `json:"success"`
	Message MessageResponse `json:"message"`
	ChatId  string          `json:"chatId"`
}

// ChatTurnResult holds exactly one of Created or Continued.
type ChatTurnResult struct {
	Created   *CreateChatResponse
	Continued *ContinueChatResponse
}

type ChatSummaryResponse struct {
	Id        string    `json:"_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ChatListResponse struct {
	Chats []ChatSummaryResponse `json:"chats"`
}

type ChatResponse struct {
	Id        string            `json:"_id"`
	Title     string            `json:"title"`
	Messages  []MessageResponse `json:"messages"`
	UserId    string            `json:"userId"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type ChatDetailResponse struct {
	Chat ChatResponse `json:"chat"`
}

type DeleteChatResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
