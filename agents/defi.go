package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
)

type ProtocolConfig struct {
	Name   string  `json:"name" validate:"required"`
	Staked float64 `json:"staked" validate:"gte=0"`
	APY    float64 `json:"apy" validate:"gte=0"`
}

type DeFiConfig struct {
	Protocols        []ProtocolConfig `json:"protocols" validate:"dive"`
	HarvestThreshold float64          `json:"harvest_threshold" validate:"gte=0"`
}

func DefaultDeFiConfig() DeFiConfig {
	return DeFiConfig{
		Protocols: []ProtocolConfig{
			{Name: "Aave", Staked: 5000, APY: 8},
			{Name: "Compound", Staked: 3000, APY: 6},
			{Name: "Curve", Staked: 2000, APY: 15},
		},
		HarvestThreshold: 50,
	}
}

type protocol struct {
	name    string
	staked  float64
	apy     float64
	pending float64
}

// DeFi accrues hourly yield per protocol and harvests and compounds rewards
// once they reach the threshold. Every tick is treated as one hour.
type DeFi struct {
	*core
	cfg       DeFiConfig
	protocols []*protocol
	harvested float64
}

func NewDeFi(cfg DeFiConfig, opts ...Option) *DeFi {
	d := &DeFi{core: newCore(DeFiName, opts), cfg: cfg}
	for _, p := range cfg.Protocols {
		d.protocols = append(d.protocols, &protocol{name: p.Name, staked: p.Staked, apy: p.APY})
	}
	return d
}

func (d *DeFi) Evaluate(tick models.MarketTick) models.Decision {
	return d.evaluate(tick, d.decide)
}

// Staked returns the current stake per protocol.
func (d *DeFi) Staked() map[string]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]float64, len(d.protocols))
	for _, p := range d.protocols {
		out[p.name] = p.staked
	}
	return out
}

func (d *DeFi) decide(tick models.MarketTick) models.Decision {
	var pending float64
	for _, p := range d.protocols {
		p.pending += p.staked * p.apy / 100 / 365 / 24
		pending += p.pending
	}

	for _, p := range d.protocols {
		if p.pending < d.cfg.HarvestThreshold {
			continue
		}
		reward := p.pending
		p.staked += reward
		p.pending = 0
		d.harvested += reward
		return models.Decision{
			Action:     models.Buy,
			Amount:     reward,
			Price:      tick.Price,
			Reason:     fmt.Sprintf("Harvested and compounded $%.2f from %s", reward, p.name),
			ProfitLoss: reward,
			Metadata: map[string]interface{}{
				"protocol":       p.name,
				"newStake":       p.staked,
				"totalHarvested": d.harvested,
			},
		}
	}

	return models.HoldAt(tick.Price, fmt.Sprintf("Pending rewards $%.2f", pending))
}
