package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/utils"
)

type LendingPositionConfig struct {
	Protocol     string  `json:"protocol" validate:"required"`
	Supplied     float64 `json:"supplied" validate:"gte=0"`
	Borrowed     float64 `json:"borrowed" validate:"gte=0"`
	SupplyAPY    float64 `json:"supply_apy" validate:"gte=0"`
	BorrowAPY    float64 `json:"borrow_apy" validate:"gte=0"`
	HealthFactor float64 `json:"health_factor" validate:"gt=0"`
}

type LendingConfig struct {
	Positions       []LendingPositionConfig `json:"positions" validate:"dive"`
	MinHealthFactor float64                 `json:"min_health_factor" validate:"gt=0"`
	RepayFraction   float64                 `json:"repay_fraction" validate:"gt=0,lte=1"`
	HealthDrift     float64                 `json:"health_drift" validate:"gte=0"` // max health factor move per tick
	RepayFeeRate    float64                 `json:"repay_fee_rate" validate:"gte=0,lt=1"`
}

func DefaultLendingConfig() LendingConfig {
	return LendingConfig{
		Positions: []LendingPositionConfig{
			{Protocol: "Aave", Supplied: 5000, Borrowed: 2000, SupplyAPY: 5, BorrowAPY: 8, HealthFactor: 2.5},
			{Protocol: "Compound", Supplied: 3000, Borrowed: 1000, SupplyAPY: 4, BorrowAPY: 7, HealthFactor: 3.0},
		},
		MinHealthFactor: 1.5,
		RepayFraction:   0.2,
		HealthDrift:     0.1,
		RepayFeeRate:    0.01,
	}
}

// debt free positions report this health factor
const maxHealthFactor = 100

type lendingPosition struct {
	protocol     string
	supplied     float64
	borrowed     float64
	supplyAPY    float64
	borrowAPY    float64
	healthFactor float64
}

// Lending watches health factors and repays part of a position's debt when
// its health factor falls below the minimum.
type Lending struct {
	*core
	cfg       LendingConfig
	positions []*lendingPosition
}

func NewLending(cfg LendingConfig, opts ...Option) *Lending {
	l := &Lending{core: newCore(LendingName, opts), cfg: cfg}
	for _, p := range cfg.Positions {
		l.positions = append(l.positions, &lendingPosition{
			protocol:     p.Protocol,
			supplied:     p.Supplied,
			borrowed:     p.Borrowed,
			supplyAPY:    p.SupplyAPY,
			borrowAPY:    p.BorrowAPY,
			healthFactor: p.HealthFactor,
		})
	}
	return l
}

func (l *Lending) Evaluate(tick models.MarketTick) models.Decision {
	return l.evaluate(tick, l.decide)
}

// HealthFactors returns the health factor per protocol.
func (l *Lending) HealthFactors() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.positions))
	for _, p := range l.positions {
		out[p.protocol] = p.healthFactor
	}
	return out
}

func (l *Lending) netAPY() float64 {
	var net float64
	for _, p := range l.positions {
		net += p.supplied*p.supplyAPY/100 - p.borrowed*p.borrowAPY/100
	}
	return net
}

// atRisk perturbs health factors in order and stops at the first position
// below the minimum.
func (l *Lending) atRisk() *lendingPosition {
	for _, p := range l.positions {
		p.healthFactor = utils.ConstrainFloat(p.healthFactor+(l.draw()-0.5)*2*l.cfg.HealthDrift, 0, maxHealthFactor, 4)
		if p.healthFactor < l.cfg.MinHealthFactor {
			return p
		}
	}
	return nil
}

func (l *Lending) decide(tick models.MarketTick) models.Decision {
	if p := l.atRisk(); p != nil {
		repay := p.borrowed * l.cfg.RepayFraction
		p.borrowed -= repay
		if p.borrowed > 0 {
			p.healthFactor = p.supplied / p.borrowed * 0.8
		} else {
			p.healthFactor = maxHealthFactor
		}
		return models.Decision{
			Action:     models.Sell,
			Amount:     repay,
			Price:      tick.Price,
			Reason:     fmt.Sprintf("Repaid $%.2f on %s to improve health", repay, p.protocol),
			ProfitLoss: -repay * l.cfg.RepayFeeRate,
			Metadata: map[string]interface{}{
				"protocol":        p.protocol,
				"newHealthFactor": p.healthFactor,
			},
		}
	}

	net := l.netAPY()
	hold := models.HoldAt(tick.Price, fmt.Sprintf("Net APY: $%.2f/year. Daily: $%.2f", net, net/365))
	hold.Metadata = map[string]interface{}{"netApy": net, "dailyIncome": net / 365}
	return hold
}
