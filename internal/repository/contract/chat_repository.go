package contract

import (
	"context"

	"ai-chat-be/internal/entity"
)

// ChatRepository scopes every read and delete by owner. Lookups of an unknown
// or malformed id return (nil, nil).
type ChatRepository interface {
	// Create assigns the chat and message ids.
	Create(ctx context.Context, chat *entity.Chat) error
	// Save persists the whole chat, refreshes UpdatedAt and assigns ids to new messages.
	Save(ctx context.Context, chat *entity.Chat) error
	FindOwned(ctx context.Context, id, userId string) (*entity.Chat, error)
	// ListSummaries is ordered by UpdatedAt, newest first.
	ListSummaries(ctx context.Context, userId string) ([]*entity.ChatSummary, error)
	DeleteOwned(ctx context.Context, id, userId string) (int64, error)
	DeleteAllByUser(ctx context.Context, userId string) (int64, error)
}
