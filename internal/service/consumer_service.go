package service

import (
	"context"
	"encoding/json"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// chatPurgeConsumer removes the chats of deleted accounts.
type chatPurgeConsumer struct {
	subscriber message.Subscriber
	topicName  string
	chats      IChatService
	log        logger.ILogger
}

func NewChatPurgeConsumer(
	subscriber message.Subscriber,
	topicName string,
	chats IChatService,
	log logger.ILogger,
) IConsumerService {
	return &chatPurgeConsumer{
		subscriber: subscriber,
		topicName:  topicName,
		chats:      chats,
		log:        log,
	}
}

// Consume subscribes and returns; messages are handled on a background
// goroutine until ctx is cancelled or the subscriber is closed.
func (c *chatPurgeConsumer) Consume(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(msg)
		}
	}()

	return nil
}

func (c *chatPurgeConsumer) processMessage(msg *message.Message) {
	var payload dto.UserDeletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.ClerkId == "" {
		c.log.Error("consumer", "Dropping malformed purge message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack()
		return
	}

	deleted, err := c.chats.PurgeUserChats(msg.Context(), payload.ClerkId)
	if err != nil {
		// not nacked: gochannel redelivers immediately
		c.log.Error("consumer", "Failed to purge chats", map[string]interface{}{
			"clerk_id": payload.ClerkId,
			"error":    err,
		})
		msg.Ack()
		return
	}

	c.log.Info("consumer", "Purged chats for deleted user", map[string]interface{}{
		"clerk_id": payload.ClerkId,
		"deleted":  deleted,
	})
	msg.Ack()
}
