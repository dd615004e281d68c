// Package data supplies market ticks: a seeded random walk for simulation,
// replay of recorded candles, and csv loading.
package data

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/tantralabs/sena/models"
)

// ErrExhausted is returned by a source with no ticks left.
var ErrExhausted = errors.New("tick source exhausted")

// Replay hands out a fixed series of ticks in order.
type Replay struct {
	mu    sync.Mutex
	ticks []models.MarketTick
	pos   int
}

func NewReplay(ticks []models.MarketTick) *Replay {
	return &Replay{ticks: append([]models.MarketTick(nil), ticks...)}
}

// ReplayCandles replays candles priced at fill, with bid and ask halfSpread
// either side.
func ReplayCandles(candles []models.Candle, halfSpread float64, fill string) *Replay {
	ticks := make([]models.MarketTick, len(candles))
	for i, c := range candles {
		c.Close = FillPrice(c, fill)
		ticks[i] = c.Tick(halfSpread)
	}
	return &Replay{ticks: ticks}
}

func (r *Replay) Next(ctx context.Context) (models.MarketTick, error) {
	if err := ctx.Err(); err != nil {
		return models.MarketTick{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= len(r.ticks) {
		return models.MarketTick{}, ErrExhausted
	}
	t := r.ticks[r.pos]
	r.pos++
	return t, nil
}

// Remaining is the number of ticks not yet handed out.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks) - r.pos
}

// Take pulls up to n ticks from src, stopping early when it is exhausted.
func Take(ctx context.Context, src interface {
	Next(context.Context) (models.MarketTick, error)
}, n int) ([]models.MarketTick, error) {
	ticks := make([]models.MarketTick, 0, n)
	for i := 0; i < n; i++ {
		t, err := src.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			return ticks, err
		}
		ticks = append(ticks, t)
	}
	return ticks, nil
}
