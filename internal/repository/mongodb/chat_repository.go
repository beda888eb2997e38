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
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrChatNotFound = errors.New("chat not found")

type ChatRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewChatRepository(db *mongo.Database) contract.ChatRepository {
	return &ChatRepository{
		coll: db.Collection(ChatCollection),
		now:  time.Now,
	}
}

// ownedFilter returns ok=false for ids that can never match.
func ownedFilter(id, userId string) (bson.D, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: userId}}, true
}

func (r *ChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	now := r.now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = now

	doc, err := toChatDocument(chat)
	if err != nil {
		return fmt.Errorf("build chat document: %w", err)
	}
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	chat.Id = doc.ID.Hex()
	return nil
}

func (r *ChatRepository) Save(ctx context.Context, chat *entity.Chat) error {
	doc, err := toChatDocument(chat)
	if err != nil {
		return fmt.Errorf("build chat document: %w", err)
	}
	doc.UpdatedAt = r.now()

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("chat %s: %w", chat.Id, ErrChatNotFound)
	}
	chat.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *ChatRepository) FindOwned(ctx context.Context, id, userId string) (*entity.Chat, error) {
	filter, ok := ownedFilter(id, userId)
	if !ok {
		return nil, nil
	}

	var doc chatDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ChatRepository) ListSummaries(ctx context.Context, userId string) ([]*entity.ChatSummary, error) {
	opts := options.Find().
		SetProjection(bson.D{
			{Key: "_id", Value: 1},
			{Key: "title", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "updatedAt", Value: 1},
		}).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "userId", Value: userId}}, opts)
	if err != nil {
		return nil, err
	}

	var docs []chatDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	summaries := make([]*entity.ChatSummary, len(docs))
	for i := range docs {
		summaries[i] = docs[i].toSummary()
	}
	return summaries, nil
}

func (r *ChatRepository) DeleteOwned(ctx context.Context, id, userId string) (int64, error) {
	filter, ok := ownedFilter(id, userId)
	if !ok {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ChatRepository) DeleteAllByUser(ctx context.Context, userId string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "userId", Value: userId}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
