package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
)

type ArbitrageConfig struct {
	MinSpreadPercent float64 `json:"min_spread_percent" validate:"gte=0"`
	PositionSize     float64 `json:"position_size" validate:"gt=0"`
}

func DefaultArbitrageConfig() ArbitrageConfig {
	return ArbitrageConfig{MinSpreadPercent: 0.5, PositionSize: 1}
}

// Arbitrage buys at the bid whenever the bid/ask spread is wide enough to
// capture.
type Arbitrage struct {
	*core
	cfg ArbitrageConfig
}

func NewArbitrage(cfg ArbitrageConfig, opts ...Option) *Arbitrage {
	return &Arbitrage{core: newCore(ArbitrageName, opts), cfg: cfg}
}

func (a *Arbitrage) Evaluate(tick models.MarketTick) models.Decision {
	return a.evaluate(tick, a.decide)
}

func (a *Arbitrage) decide(tick models.MarketTick) models.Decision {
	if tick.BidPrice <= 0 {
		return models.HoldAt(tick.Price, "evaluation anomaly: non-positive bid")
	}
	spread := (tick.AskPrice - tick.BidPrice) / tick.BidPrice * 100
	if spread < a.cfg.MinSpreadPercent {
		return models.HoldAt(tick.Price, fmt.Sprintf("Spread %.3f%% below %.3f%%", spread, a.cfg.MinSpreadPercent))
	}
	return models.Decision{
		Action:     models.Buy,
		Amount:     a.cfg.PositionSize,
		Price:      tick.BidPrice,
		Reason:     fmt.Sprintf("Arbitrage spread %.3f%%", spread),
		ProfitLoss: (tick.AskPrice - tick.BidPrice) * a.cfg.PositionSize,
		Metadata: map[string]interface{}{
			"bid":    tick.BidPrice,
			"ask":    tick.AskPrice,
			"spread": spread,
		},
	}
}
