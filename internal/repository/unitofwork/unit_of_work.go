package unitofwork

import (
	"ai-chat-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one store. Chat turns are written
// step by step, so there is no transaction boundary here.
type UnitOfWork interface {
	ChatRepository() contract.ChatRepository
	UserRepository() contract.UserRepository
}
