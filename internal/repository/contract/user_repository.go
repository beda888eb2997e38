package contract

import (
	"context"

	"ai-chat-be/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByClerkId(ctx context.Context, clerkId string) (*entity.User, error)
	DeleteByClerkId(ctx context.Context, clerkId string) (int64, error)
}
