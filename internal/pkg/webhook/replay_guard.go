package webhook

import (
	"context"
	"time"

	"ai-chat-be/internal/repository/contract"
)

const DefaultReplayWindow = 24 * time.Hour

// ReplayGuard remembers delivery ids so a retried webhook is applied once.
type ReplayGuard struct {
	store  contract.DeliveryRepository
	window time.Duration
}

func NewReplayGuard(store contract.DeliveryRepository, window time.Duration) *ReplayGuard {
	if window <= 0 {
		window = DefaultReplayWindow
	}
	return &ReplayGuard{store: store, window: window}
}

// FirstDelivery reports whether id has not been seen inside the window.
// An empty id is always treated as new.
func (g *ReplayGuard) FirstDelivery(ctx context.Context, id string) (bool, error) {
	if g == nil || id == "" {
		return true, nil
	}
	return g.store.MarkSeen(ctx, id, g.window)
}

// Release forgets id after a failed delivery so the sender's retry is applied.
func (g *ReplayGuard) Release(ctx context.Context, id string) error {
	if g == nil || id == "" {
		return nil
	}
	return g.store.Forget(ctx, id)
}
