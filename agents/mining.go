package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
)

type MinerConfig struct {
	ID       string  `json:"id" validate:"required"`
	HashRate float64 `json:"hash_rate" validate:"gte=0"` // TH/s
	Watts    float64 `json:"watts" validate:"gte=0"`
	Active   bool    `json:"active"`
}

type MiningConfig struct {
	Miners          []MinerConfig `json:"miners" validate:"dive"`
	ElectricityCost float64       `json:"electricity_cost" validate:"gte=0"` // per kWh
	RewardPerTH     float64       `json:"reward_per_th" validate:"gte=0"`    // coin per TH/s per day
	ProfitBuffer    float64       `json:"profit_buffer" validate:"gte=0"`    // required margin over cost before adding a miner
}

func DefaultMiningConfig() MiningConfig {
	return MiningConfig{
		Miners: []MinerConfig{
			{ID: "miner_1", HashRate: 110, Watts: 3250, Active: true},
			{ID: "miner_2", HashRate: 100, Watts: 3000, Active: true},
			{ID: "miner_3", HashRate: 90, Watts: 2800, Active: false},
		},
		ElectricityCost: 0.10,
		RewardPerTH:     0.0000001,
		ProfitBuffer:    0.2,
	}
}

type miner struct {
	id       string
	hashRate float64
	watts    float64
	active   bool
}

// Mining switches miners off when the fleet loses money and back on when the
// margin is comfortably positive. Every tick is treated as one hour.
type Mining struct {
	*core
	cfg          MiningConfig
	miners       []*miner
	totalMined   float64
	totalRevenue float64
	totalCost    float64
}

func NewMining(cfg MiningConfig, opts ...Option) *Mining {
	m := &Mining{core: newCore(MiningName, opts), cfg: cfg}
	for _, c := range cfg.Miners {
		m.miners = append(m.miners, &miner{id: c.ID, hashRate: c.HashRate, watts: c.Watts, active: c.Active})
	}
	return m
}

func (m *Mining) Evaluate(tick models.MarketTick) models.Decision {
	return m.evaluate(tick, m.decide)
}

// ActiveMiners returns the ids of running miners.
func (m *Mining) ActiveMiners() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, mn := range m.miners {
		if mn.active {
			ids = append(ids, mn.id)
		}
	}
	return ids
}

func (m *Mining) hashRate() float64 {
	var total float64
	for _, mn := range m.miners {
		if mn.active {
			total += mn.hashRate
		}
	}
	return total
}

func (m *Mining) dailyCost() float64 {
	var watts float64
	for _, mn := range m.miners {
		if mn.active {
			watts += mn.watts
		}
	}
	return watts / 1000 * m.cfg.ElectricityCost * 24
}

func (m *Mining) leastEfficient() *miner {
	var worst *miner
	for _, mn := range m.miners {
		if !mn.active || mn.watts <= 0 {
			continue
		}
		if worst == nil || mn.hashRate/mn.watts < worst.hashRate/worst.watts {
			worst = mn
		}
	}
	return worst
}

func (m *Mining) firstIdle() *miner {
	for _, mn := range m.miners {
		if !mn.active {
			return mn
		}
	}
	return nil
}

func (m *Mining) decide(tick models.MarketTick) models.Decision {
	price := tick.Price
	reward := m.hashRate() * m.cfg.RewardPerTH * price
	cost := m.dailyCost()
	profit := reward - cost

	if reward <= cost {
		if mn := m.leastEfficient(); mn != nil {
			mn.active = false
			return models.Decision{
				Action:     models.Sell,
				Amount:     mn.hashRate,
				Price:      price,
				Reason:     fmt.Sprintf("Shut down %s - unprofitable at $%.0f", mn.id, price),
				ProfitLoss: -cost / 24,
				Metadata:   map[string]interface{}{"minerId": mn.id, "hashRate": m.hashRate()},
			}
		}
	} else if mn := m.firstIdle(); mn != nil && profit > cost*m.cfg.ProfitBuffer {
		mn.active = true
		return models.Decision{
			Action:     models.Buy,
			Amount:     mn.hashRate,
			Price:      price,
			Reason:     fmt.Sprintf("Activated %s - profitable at $%.0f", mn.id, price),
			ProfitLoss: profit / 24,
			Metadata:   map[string]interface{}{"minerId": mn.id, "hashRate": m.hashRate(), "dailyProfit": profit},
		}
	}

	if price > 0 {
		m.totalMined += reward / 24 / price
	}
	m.totalRevenue += reward / 24
	m.totalCost += cost / 24
	hold := models.HoldAt(price, fmt.Sprintf("Mining: %.0f TH/s. Daily profit: $%.2f", m.hashRate(), profit))
	hold.Metadata = map[string]interface{}{"totalMined": m.totalMined, "totalRevenue": m.totalRevenue, "totalCost": m.totalCost}
	return hold
}
