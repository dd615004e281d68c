package interfaces

import (
	"context"

	"github.com/tantralabs/sena/models"
)

type TickSource interface {
	Next(ctx context.Context) (models.MarketTick, error)
}

type RateLimiter interface {
	Allow(identity string) bool
}

// Notifier delivers events. Implementations must not block the caller on
// delivery failures.
type Notifier interface {
	Notify(event models.Event)
}
