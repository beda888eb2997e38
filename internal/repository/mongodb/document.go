package mongodb

import (
	"fmt"
	"time"

	"ai-chat-be/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ChatCollection = "chats"
	UserCollection = "users"
)

type messageDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Content   string        `bson:"content"`
	Role      string        `bson:"role"`
	Timestamp time.Time     `bson:"timestamp"`
}

type chatDocument struct {
	ID        bson.ObjectID     `bson:"_id,omitempty"`
	Title     string            `bson:"title"`
	Messages  []messageDocument `bson:"messages"`
	UserID    string            `bson:"userId"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	ClerkID   string        `bson:"clerkId"`
	Email     string        `bson:"email"`
	Metadata  bson.M        `bson:"metadata,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// toChatDocument assigns ObjectIDs to messages that do not have one and writes
// them back to the entity. Messages with an unknown role are rejected.
func toChatDocument(chat *entity.Chat) (*chatDocument, error) {
	doc := &chatDocument{
		Title:     chat.Title,
		Messages:  make([]messageDocument, len(chat.Messages)),
		UserID:    chat.UserId,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
	if chat.Id != "" {
		id, err := bson.ObjectIDFromHex(chat.Id)
		if err != nil {
			return nil, err
		}
		doc.ID = id
	}

	for i, msg := range chat.Messages {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", entity.ErrInvalidMessageRole, msg.Role)
		}
		var msgID bson.ObjectID
		if msg.Id != "" {
			parsed, err := bson.ObjectIDFromHex(msg.Id)
			if err != nil {
				return nil, err
			}
			msgID = parsed
		} else {
			msgID = bson.NewObjectID()
			msg.Id = msgID.Hex()
		}
		doc.Messages[i] = messageDocument{
			ID:        msgID,
			Content:   msg.Content,
			Role:      string(msg.Role),
			Timestamp: msg.Timestamp,
		}
	}
	return doc, nil
}

func (d *chatDocument) toEntity() *entity.Chat {
	messages := make([]*entity.ChatMessage, len(d.Messages))
	for i, m := range d.Messages {
		messages[i] = &entity.ChatMessage{
			Id:        m.ID.Hex(),
			Content:   m.Content,
			Role:      entity.MessageRole(m.Role),
			Timestamp: m.Timestamp,
		}
	}
	return &entity.Chat{
		Id:        d.ID.Hex(),
		Title:     d.Title,
		Messages:  messages,
		UserId:    d.UserID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *chatDocument) toSummary() *entity.ChatSummary {
	return &entity.ChatSummary{
		Id:        d.ID.Hex(),
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		Id:        d.ID.Hex(),
		ClerkId:   d.ClerkID,
		Email:     d.Email,
		Metadata:  map[string]interface{}(d.Metadata),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
