package agents

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/tantralabs/sena/models"
)

const (
	OpportunitySandwich    = "sandwich"
	OpportunityArbitrage   = "arbitrage"
	OpportunityLiquidation = "liquidation"
)

var opportunityTypes = []string{OpportunitySandwich, OpportunityArbitrage, OpportunityLiquidation}

// ErrUnknownOverride is returned for override keys an agent does not expose.
var ErrUnknownOverride = errors.New("unknown override")

type MEVConfig struct {
	DetectAbove   float64 `json:"detect_above" validate:"gte=0,lte=1"` // draws above this find an opportunity
	ProfitFloor   float64 `json:"profit_floor" validate:"gte=0"`
	ProfitRange   float64 `json:"profit_range" validate:"gte=0"`
	MinProfit     float64 `json:"min_profit" validate:"gte=0"`
	GasPrice      float64 `json:"gas_price" validate:"gte=0"`       // gwei
	NetShare      float64 `json:"net_share" validate:"gte=0,lte=1"` // share of profit kept after gas
	EthicsEnabled bool    `json:"ethics_enabled"`
}

func DefaultMEVConfig() MEVConfig {
	return MEVConfig{
		DetectAbove:   0.9,
		ProfitFloor:   10,
		ProfitRange:   100,
		MinProfit:     10,
		GasPrice:      100,
		NetShare:      0.9,
		EthicsEnabled: true,
	}
}

// MEV simulates finding extractable value opportunities. With ethics enabled
// sandwich opportunities are always declined.
type MEV struct {
	*core
	cfg MEVConfig
}

func NewMEV(cfg MEVConfig, opts ...Option) *MEV {
	return &MEV{core: newCore(MEVName, opts), cfg: cfg}
}

func (m *MEV) Evaluate(tick models.MarketTick) models.Decision {
	return m.evaluate(tick, m.decide)
}

// ApplyOverride sets "ethics" (bool) or "min_profit" (non-negative float).
func (m *MEV) ApplyOverride(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch key {
	case "ethics":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "ethics %q", value)
		}
		m.cfg.EthicsEnabled = on
	case "min_profit":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrapf(err, "min_profit %q", value)
		}
		if v < 0 {
			return errors.Errorf("min_profit must not be negative, got %v", v)
		}
		m.cfg.MinProfit = v
	default:
		return errors.Wrapf(ErrUnknownOverride, "mev %q", key)
	}
	m.log.Infof("override %s=%s", key, value)
	return nil
}

func (m *MEV) Overrides() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]string{
		"ethics":     strconv.FormatBool(m.cfg.EthicsEnabled),
		"min_profit": strconv.FormatFloat(m.cfg.MinProfit, 'f', -1, 64),
	}
}

func (m *MEV) decide(tick models.MarketTick) models.Decision {
	if m.draw() <= m.cfg.DetectAbove {
		return models.HoldAt(tick.Price, "No MEV opportunity detected")
	}
	kind := opportunityTypes[pick(m.draw(), len(opportunityTypes))]
	profit := m.draw()*m.cfg.ProfitRange + m.cfg.ProfitFloor

	if kind == OpportunitySandwich && m.cfg.EthicsEnabled {
		return models.HoldAt(tick.Price, "Declined sandwich opportunity (ethics mode)")
	}
	if profit < m.cfg.MinProfit {
		return models.HoldAt(tick.Price, fmt.Sprintf("%s opportunity of $%.2f below minimum", kind, profit))
	}

	return models.Decision{
		Action:     models.Buy,
		Amount:     1,
		Price:      tick.Price,
		Reason:     fmt.Sprintf("Executed %s opportunity", kind),
		ProfitLoss: profit,
		Metadata: map[string]interface{}{
			"type":      kind,
			"gasPrice":  m.cfg.GasPrice,
			"netProfit": profit * m.cfg.NetShare,
		},
	}
}
