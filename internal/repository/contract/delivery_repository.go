package contract

import (
	"context"
	"time"
)

// DeliveryRepository remembers webhook delivery ids.
type DeliveryRepository interface {
	// MarkSeen records id and reports whether it was new.
	MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// Forget drops id so a failed delivery can be retried.
	Forget(ctx context.Context, id string) error
}
