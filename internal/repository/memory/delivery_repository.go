package memory

import (
	"context"
	"time"

	"ai-chat-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// DeliveryRepository is the in-process fallback used when Redis is not configured.
type DeliveryRepository struct {
	cache *cache.Cache
}

func NewDeliveryRepository() contract.DeliveryRepository {
	// Entries carry their own TTL; sweep expired ones every 10 minutes.
	c := cache.New(24*time.Hour, 10*time.Minute)
	return &DeliveryRepository{
		cache: c,
	}
}

func (r *DeliveryRepository) MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	// Add fails if the key already exists and has not expired.
	if err := r.cache.Add(id, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *DeliveryRepository) Forget(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}
