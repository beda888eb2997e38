package redisstore

import (
	"context"
	"time"

	"ai-chat-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const deliveryKeyPrefix = "webhook:delivery:"

type DeliveryRepository struct {
	client redis.Cmdable
}

func NewDeliveryRepository(client redis.Cmdable) contract.DeliveryRepository {
	return &DeliveryRepository{client: client}
}

func (r *DeliveryRepository) MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, deliveryKeyPrefix+id, 1, ttl).Result()
}

func (r *DeliveryRepository) Forget(ctx context.Context, id string) error {
	return r.client.Del(ctx, deliveryKeyPrefix+id).Err()
}
