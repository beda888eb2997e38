package unitofwork

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db *gorm.DB
}

// NewRepositoryFactory serves repositories backed by the SQL store.
func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db: db,
	}
}

func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db.WithContext(ctx))
}

type MongoRepositoryFactory struct {
	db *mongo.Database
}

// NewMongoRepositoryFactory serves repositories backed by the document store.
func NewMongoRepositoryFactory(db *mongo.Database) RepositoryFactory {
	return &MongoRepositoryFactory{
		db: db,
	}
}

func (f *MongoRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewMongoUnitOfWork(f.db)
}
