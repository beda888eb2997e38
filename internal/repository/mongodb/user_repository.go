package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/contract"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) contract.UserRepository {
	return &UserRepository{
		coll: db.Collection(UserCollection),
		now:  time.Now,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	now := r.now()
	doc := userDocument{
		ID:        bson.NewObjectID(),
		ClerkID:   user.ClerkId,
		Email:     user.Email,
		Metadata:  bson.M(user.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	*user = *doc.toEntity()
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	now := r.now()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: user.Email},
		{Key: "metadata", Value: bson.M(user.Metadata)},
		{Key: "updatedAt", Value: now},
	}}}

	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "clerkId", Value: user.ClerkId}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", user.ClerkId, mongo.ErrNoDocuments)
	}
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) FindByClerkId(ctx context.Context, clerkId string) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "clerkId", Value: clerkId}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) DeleteByClerkId(ctx context.Context, clerkId string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "clerkId", Value: clerkId}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
