package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/utils"
)

type MarketMakingConfig struct {
	SpreadPercent float64 `json:"spread_percent" validate:"gte=0"`
	OrderSize     float64 `json:"order_size" validate:"gt=0"`
	MaxInventory  float64 `json:"max_inventory" validate:"gt=0"`
	BidFillBelow  float64 `json:"bid_fill_below" validate:"gte=0,lte=1"` // draws below this fill the bid
	AskFillAbove  float64 `json:"ask_fill_above" validate:"gte=0,lte=1"` // draws above this fill the ask
}

func DefaultMarketMakingConfig() MarketMakingConfig {
	return MarketMakingConfig{
		SpreadPercent: 0.5,
		OrderSize:     0.1,
		MaxInventory:  1,
		BidFillBelow:  0.3,
		AskFillAbove:  0.7,
	}
}

// MarketMaking quotes both sides around the tick price and simulates fills
// with a random draw.
type MarketMaking struct {
	*core
	cfg       MarketMakingConfig
	inventory float64
}

func NewMarketMaking(cfg MarketMakingConfig, opts ...Option) *MarketMaking {
	return &MarketMaking{core: newCore(MarketMakingName, opts), cfg: cfg}
}

func (m *MarketMaking) Evaluate(tick models.MarketTick) models.Decision {
	return m.evaluate(tick, m.decide)
}

func (m *MarketMaking) Inventory() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory
}

func (m *MarketMaking) decide(tick models.MarketTick) models.Decision {
	half := m.cfg.SpreadPercent / 100
	bid := tick.Price * (1 - half)
	ask := tick.Price * (1 + half)
	r := m.draw()

	if r < m.cfg.BidFillBelow && m.inventory < m.cfg.MaxInventory {
		m.inventory = utils.ToFixed(m.inventory+m.cfg.OrderSize, 8)
		return models.Decision{
			Action:   models.Buy,
			Amount:   m.cfg.OrderSize,
			Price:    bid,
			Reason:   fmt.Sprintf("Bid filled at %.2f", bid),
			Metadata: map[string]interface{}{"bid": bid, "ask": ask, "inventory": m.inventory},
		}
	}

	if r > m.cfg.AskFillAbove && m.inventory > 0 {
		m.inventory = utils.ToFixed(m.inventory-m.cfg.OrderSize, 8)
		return models.Decision{
			Action:     models.Sell,
			Amount:     m.cfg.OrderSize,
			Price:      ask,
			Reason:     fmt.Sprintf("Ask filled at %.2f", ask),
			ProfitLoss: (ask - bid) * m.cfg.OrderSize,
			Metadata:   map[string]interface{}{"bid": bid, "ask": ask, "inventory": m.inventory},
		}
	}

	return models.HoldAt(tick.Price, fmt.Sprintf("Quoting %.2f / %.2f, inventory %.2f", bid, ask, m.inventory))
}
