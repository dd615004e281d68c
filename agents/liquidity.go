package agents

import (
	"fmt"
	"math"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/utils"
)

type PoolConfig struct {
	Name string  `json:"name" validate:"required"`
	APY  float64 `json:"apy" validate:"gte=0"`
}

type LiquidityConfig struct {
	Capital            float64      `json:"capital" validate:"gte=0"`
	Pools              []PoolConfig `json:"pools" validate:"dive"`
	RebalanceThreshold float64      `json:"rebalance_threshold" validate:"gte=0"` // percent deviation from target
	APYDrift           float64      `json:"apy_drift" validate:"gte=0"`           // max APY move per tick
	MinAPY             float64      `json:"min_apy" validate:"gte=0"`
	MaxAPY             float64      `json:"max_apy" validate:"gtefield=MinAPY"`
}

func DefaultLiquidityConfig() LiquidityConfig {
	return LiquidityConfig{
		Capital: 10000,
		Pools: []PoolConfig{
			{Name: "ETH-USDC", APY: 15},
			{Name: "BTC-USDC", APY: 12},
			{Name: "ETH-BTC", APY: 8},
		},
		RebalanceThreshold: 5,
		APYDrift:           1,
		MinAPY:             1,
		MaxAPY:             50,
	}
}

type pool struct {
	name       string
	apy        float64
	liquidity  float64
	allocation float64
}

// Liquidity spreads capital over pools in proportion to their APY and
// reallocates when a pool drifts too far from its target.
type Liquidity struct {
	*core
	cfg     LiquidityConfig
	capital float64
	pools   []*pool
}

func NewLiquidity(cfg LiquidityConfig, opts ...Option) *Liquidity {
	l := &Liquidity{core: newCore(LiquidityName, opts), cfg: cfg, capital: cfg.Capital}
	for _, p := range cfg.Pools {
		l.pools = append(l.pools, &pool{name: p.Name, apy: p.APY})
	}
	l.optimize()
	return l
}

func (l *Liquidity) Evaluate(tick models.MarketTick) models.Decision {
	return l.evaluate(tick, l.decide)
}

// Capital is the total liquidity across pools.
func (l *Liquidity) Capital() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capital
}

func (l *Liquidity) optimize() {
	apys := make([]float64, len(l.pools))
	for i, p := range l.pools {
		apys[i] = p.apy
	}
	total := utils.SumArr(apys)
	if total <= 0 {
		return
	}
	for _, p := range l.pools {
		p.allocation = p.apy / total
		p.liquidity = l.capital * p.allocation
	}
}

func (l *Liquidity) rebalanceNeeded() bool {
	for _, p := range l.pools {
		expected := l.capital * p.allocation
		if expected <= 0 {
			continue
		}
		if math.Abs(p.liquidity-expected)/expected*100 > l.cfg.RebalanceThreshold {
			return true
		}
	}
	return false
}

func (l *Liquidity) dailyEarnings() float64 {
	var earnings float64
	for _, p := range l.pools {
		earnings += p.liquidity * p.apy / 100 / 365
	}
	return earnings
}

func (l *Liquidity) decide(tick models.MarketTick) models.Decision {
	for _, p := range l.pools {
		p.apy = utils.Clamp(p.apy+(l.draw()-0.5)*2*l.cfg.APYDrift, l.cfg.MinAPY, l.cfg.MaxAPY)
	}
	earnings := l.dailyEarnings()

	if l.rebalanceNeeded() {
		l.optimize()
		pools := make([]map[string]interface{}, 0, len(l.pools))
		for _, p := range l.pools {
			pools = append(pools, map[string]interface{}{
				"name":      p.name,
				"apy":       utils.ToFixed(p.apy, 2),
				"liquidity": utils.ToFixed(p.liquidity, 2),
			})
		}
		return models.Decision{
			Action:     models.Buy,
			Amount:     l.capital,
			Price:      tick.Price,
			Reason:     "Portfolio rebalanced across pools",
			ProfitLoss: earnings,
			Metadata:   map[string]interface{}{"pools": pools},
		}
	}

	var capital float64
	for _, p := range l.pools {
		p.liquidity += p.liquidity * p.apy / 100 / 365 / 24
		capital += p.liquidity
	}
	l.capital = capital

	return models.HoldAt(tick.Price, fmt.Sprintf("Earning $%.2f/day across %d pools", earnings, len(l.pools)))
}
