package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
)

type ChainConfig struct {
	Name    string  `json:"name" validate:"required"`
	Balance float64 `json:"balance" validate:"gte=0"`
	GasCost float64 `json:"gas_cost" validate:"gte=0"`
}

type BridgeConfig struct {
	Chains           []ChainConfig `json:"chains" validate:"dive"`
	FeePercent       float64       `json:"fee_percent" validate:"gte=0,lt=100"`
	TransferAmount   float64       `json:"transfer_amount" validate:"gt=0"`
	ThresholdPercent float64       `json:"threshold_percent" validate:"gte=0"` // minimum price differential
	MinBalance       float64       `json:"min_balance" validate:"gte=0"`
}

func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Chains: []ChainConfig{
			{Name: "ethereum", Balance: 5000, GasCost: 30},
			{Name: "polygon", Balance: 2000, GasCost: 50},
			{Name: "arbitrum", Balance: 1500, GasCost: 0.1},
			{Name: "optimism", Balance: 1500, GasCost: 0.1},
		},
		FeePercent:       0.1,
		TransferAmount:   1000,
		ThresholdPercent: 0.5,
		MinBalance:       100,
	}
}

type chain struct {
	name    string
	balance float64
	gasCost float64
}

// Bridge moves a fixed notional between chains when a simulated price
// differential covers the bridge fee. Pairs are scanned in chain order.
type Bridge struct {
	*core
	cfg    BridgeConfig
	chains []*chain
}

func NewBridge(cfg BridgeConfig, opts ...Option) *Bridge {
	b := &Bridge{core: newCore(BridgeName, opts), cfg: cfg}
	for _, c := range cfg.Chains {
		b.chains = append(b.chains, &chain{name: c.Name, balance: c.Balance, gasCost: c.GasCost})
	}
	return b
}

func (b *Bridge) Evaluate(tick models.MarketTick) models.Decision {
	return b.evaluate(tick, b.decide)
}

// Balances returns the balance held on every chain.
func (b *Bridge) Balances() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.chains))
	for _, c := range b.chains {
		out[c.name] = c.balance
	}
	return out
}

func (b *Bridge) decide(tick models.MarketTick) models.Decision {
	amount := b.cfg.TransferAmount
	for _, from := range b.chains {
		for _, to := range b.chains {
			if from == to {
				continue
			}
			differential := (b.draw() - 0.5) * 2
			if differential <= b.cfg.ThresholdPercent || from.balance <= b.cfg.MinBalance || from.balance < amount {
				continue
			}
			profit := differential/100*amount - amount*b.cfg.FeePercent/100
			if profit <= 0 {
				continue
			}
			from.balance -= amount
			to.balance += amount * (1 - b.cfg.FeePercent/100)
			return models.Decision{
				Action:     models.Buy,
				Amount:     amount,
				Price:      tick.Price,
				Reason:     fmt.Sprintf("Bridged $%.0f %s -> %s", amount, from.name, to.name),
				ProfitLoss: profit,
				Metadata: map[string]interface{}{
					"from":         from.name,
					"to":           to.name,
					"differential": differential,
					"gasCost":      from.gasCost,
				},
			}
		}
	}
	return models.HoldAt(tick.Price, "No profitable bridge route")
}
