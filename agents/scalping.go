package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/ta"
)

type ScalpingConfig struct {
	FastPeriod int     `json:"fast_period" validate:"gt=0"`
	SlowPeriod int     `json:"slow_period" validate:"gtfield=FastPeriod"`
	RSIPeriod  int     `json:"rsi_period" validate:"gt=0"`
	Oversold   float64 `json:"oversold" validate:"gte=0,lte=100"`
	Overbought float64 `json:"overbought" validate:"gtfield=Oversold,lte=100"`
	Window     int     `json:"window" validate:"gtefield=SlowPeriod"` // prices kept, oldest dropped first
	UnitSize   float64 `json:"unit_size" validate:"gt=0"`
}

func DefaultScalpingConfig() ScalpingConfig {
	return ScalpingConfig{
		FastPeriod: 9,
		SlowPeriod: 21,
		RSIPeriod:  14,
		Oversold:   30,
		Overbought: 70,
		Window:     100,
		UnitSize:   0.1,
	}
}

// Scalping enters on a fast/slow EMA crossover confirmed by an oversold RSI
// and exits when the crossover reverses or RSI is overbought.
type Scalping struct {
	*core
	cfg        ScalpingConfig
	prices     *ta.Window
	position   float64
	entryPrice float64
}

func NewScalping(cfg ScalpingConfig, opts ...Option) *Scalping {
	return &Scalping{
		core:   newCore(ScalpingName, opts),
		cfg:    cfg,
		prices: ta.NewWindow(cfg.Window),
	}
}

func (s *Scalping) Evaluate(tick models.MarketTick) models.Decision {
	return s.evaluate(tick, s.decide)
}

func (s *Scalping) decide(tick models.MarketTick) models.Decision {
	price := tick.Price
	s.prices.Push(price)
	history := s.prices.Values()

	fast := ta.EMA(history, s.cfg.FastPeriod)
	slow := ta.EMA(history, s.cfg.SlowPeriod)
	rsi := ta.RSI(history, s.cfg.RSIPeriod)
	meta := map[string]interface{}{"fastEma": fast, "slowEma": slow, "rsi": rsi}

	if fast > slow && rsi < s.cfg.Oversold && s.position == 0 {
		s.position = s.cfg.UnitSize
		s.entryPrice = price
		return models.Decision{
			Action:   models.Buy,
			Amount:   s.cfg.UnitSize,
			Price:    price,
			Reason:   fmt.Sprintf("Scalp entry: EMA crossover + RSI oversold (%.1f)", rsi),
			Metadata: meta,
		}
	}

	if (fast < slow || rsi > s.cfg.Overbought) && s.position > 0 {
		profit := (price - s.entryPrice) * s.position
		s.position = 0
		meta["entryPrice"] = s.entryPrice
		return models.Decision{
			Action:     models.Sell,
			Amount:     s.cfg.UnitSize,
			Price:      price,
			Reason:     fmt.Sprintf("Scalp exit: RSI %.1f", rsi),
			ProfitLoss: profit,
			Metadata:   meta,
		}
	}

	hold := models.HoldAt(price, fmt.Sprintf("EMA %.2f/%.2f, RSI %.1f", fast, slow, rsi))
	hold.Metadata = meta
	return hold
}
