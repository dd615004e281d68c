// Package agents implements the simulated strategy agents. Every agent embeds
// a core that owns its lifecycle flag, its ledger and the lock that makes an
// evaluation and its ledger append a single step.
package agents

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tantralabs/sena/ledger"
	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/stats"
	"github.com/tantralabs/sena/utils"
)

// RandSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// NewRand returns a seeded source. It is not safe for concurrent use, agents
// only draw while holding their own lock.
func NewRand(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

type options struct {
	rng   RandSource
	clock func() time.Time
}

type Option func(*options)

// WithRand replaces the agent's random source.
func WithRand(r RandSource) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithClock replaces the wall clock used when a tick carries no timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

type core struct {
	mu       sync.Mutex
	name     string
	strategy string
	active   bool
	ledger   *ledger.Ledger
	rng      RandSource
	now      func() time.Time
	log      *zap.SugaredLogger
}

func newCore(name string, opts []Option) *core {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = NewRand(time.Now().UnixNano())
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	strategy := Labels[name]
	return &core{
		name:     name,
		strategy: strategy,
		ledger:   ledger.New(name, strategy),
		rng:      o.rng,
		now:      o.clock,
		log:      logger.With("agent", name),
	}
}

func (c *core) Name() string {
	return c.name
}

func (c *core) Strategy() string {
	return c.strategy
}

func (c *core) Activate() {
	c.mu.Lock()
	c.active = true
	c.mu.Unlock()
}

func (c *core) Deactivate() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

func (c *core) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *core) Ledger() []models.LedgerEntry {
	return c.ledger.Entries()
}

func (c *core) Metrics() models.Metrics {
	return stats.Compute(c.ledger.Entries())
}

// at is the time a tick happened, the clock when the tick has none.
func (c *core) at(tick models.MarketTick) time.Time {
	if tick.Timestamp.IsZero() {
		return c.now()
	}
	return tick.Timestamp
}

// evaluate runs decide under the agent lock and records the result when it is
// a trade. A tick with a non-finite field never reaches decide, so it can not
// leave agent state half updated.
func (c *core) evaluate(tick models.MarketTick, decide func(models.MarketTick) models.Decision) models.Decision {
	for _, v := range []float64{tick.Price, tick.BidPrice, tick.AskPrice, tick.Volume} {
		if !utils.IsFinite(v) {
			c.log.Warnf("evaluation anomaly: non-finite tick %+v", tick)
			return models.HoldAt(0, "evaluation anomaly: non-finite tick")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.safeDecide(tick, decide)
	if entry, ok := c.ledger.Append(d, c.at(tick)); ok {
		c.log.Debugw("trade recorded", "action", entry.Action, "amount", entry.Amount, "price", entry.Price, "profit", entry.Profit)
	}
	return d
}

func (c *core) safeDecide(tick models.MarketTick, decide func(models.MarketTick) models.Decision) (d models.Decision) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warnf("evaluation anomaly: %v", r)
			d = models.HoldAt(tick.Price, fmt.Sprintf("evaluation anomaly: %v", r))
		}
	}()

	d = decide(tick)
	if !d.Action.Valid() || !utils.IsFinite(d.Amount) || !utils.IsFinite(d.Price) || !utils.IsFinite(d.ProfitLoss) {
		c.log.Warnf("evaluation anomaly: non-finite decision %+v", d)
		return models.HoldAt(tick.Price, "evaluation anomaly: non-finite result")
	}
	if d.Action == models.Hold {
		d.ProfitLoss = 0
		d.Amount = 0
	}
	if d.Amount < 0 {
		d.Amount = 0
	}
	return d
}

// draw is a uniform value from the agent's source.
func (c *core) draw() float64 {
	return c.rng.Float64()
}

// pick maps a uniform draw onto an index in [0, n).
func pick(r float64, n int) int {
	i := int(r * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
