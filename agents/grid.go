package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
)

type GridConfig struct {
	BasePrice    float64 `json:"base_price" validate:"gt=0"`
	Levels       int     `json:"levels" validate:"gt=0"`
	RangePercent float64 `json:"range_percent" validate:"gt=0,lt=100"` // distance of the outermost level from the base
	UnitSize     float64 `json:"unit_size" validate:"gt=0"`
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		BasePrice:    50000,
		Levels:       10,
		RangePercent: 5,
		UnitSize:     0.01,
	}
}

type gridLevel struct {
	price float64
	side  models.Action
}

// Grid buys when price falls through a level below the base and sells when it
// rises through a level above it. Levels re-arm after firing.
type Grid struct {
	*core
	cfg       GridConfig
	levels    []gridLevel
	lastPrice float64
	primed    bool
}

func NewGrid(cfg GridConfig, opts ...Option) *Grid {
	g := &Grid{core: newCore(GridName, opts), cfg: cfg}
	if cfg.Levels <= 0 {
		return g
	}
	step := cfg.BasePrice * cfg.RangePercent / 100 / float64(cfg.Levels)
	for i := 0; i < cfg.Levels; i++ {
		offset := step * float64(i+1)
		g.levels = append(g.levels,
			gridLevel{price: cfg.BasePrice - offset, side: models.Buy},
			gridLevel{price: cfg.BasePrice + offset, side: models.Sell},
		)
	}
	return g
}

func (g *Grid) Evaluate(tick models.MarketTick) models.Decision {
	return g.evaluate(tick, g.decide)
}

// Levels returns the grid prices in evaluation order.
func (g *Grid) Levels() []float64 {
	out := make([]float64, len(g.levels))
	for i, l := range g.levels {
		out[i] = l.price
	}
	return out
}

func (g *Grid) decide(tick models.MarketTick) models.Decision {
	price := tick.Price
	previous := g.lastPrice
	primed := g.primed
	g.lastPrice = price
	g.primed = true

	if !primed {
		return models.HoldAt(price, "grid armed")
	}

	for _, level := range g.levels {
		switch level.side {
		case models.Buy:
			if price <= level.price && previous > level.price {
				return models.Decision{
					Action:   models.Buy,
					Amount:   g.cfg.UnitSize,
					Price:    price,
					Reason:   fmt.Sprintf("Grid buy at level %.2f", level.price),
					Metadata: map[string]interface{}{"level": level.price},
				}
			}
		case models.Sell:
			if price >= level.price && previous < level.price {
				return models.Decision{
					Action:     models.Sell,
					Amount:     g.cfg.UnitSize,
					Price:      price,
					Reason:     fmt.Sprintf("Grid sell at level %.2f", level.price),
					ProfitLoss: (price - previous) * g.cfg.UnitSize,
					Metadata:   map[string]interface{}{"level": level.price},
				}
			}
		}
	}
	return models.HoldAt(price, fmt.Sprintf("Price %.2f inside grid", price))
}
