package unitofwork

import (
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/implementation"
	"ai-chat-be/internal/repository/mongodb"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) ChatRepository() contract.ChatRepository {
	return implementation.NewChatRepository(u.db)
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.db)
}

type MongoUnitOfWork struct {
	db *mongo.Database
}

func NewMongoUnitOfWork(db *mongo.Database) UnitOfWork {
	return &MongoUnitOfWork{
		db: db,
	}
}

func (u *MongoUnitOfWork) ChatRepository() contract.ChatRepository {
	return mongodb.NewChatRepository(u.db)
}

func (u *MongoUnitOfWork) UserRepository() contract.UserRepository {
	return mongodb.NewUserRepository(u.db)
}
