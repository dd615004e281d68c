package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/ta"
)

type MomentumConfig struct {
	Lookback          int     `json:"lookback" validate:"gt=0"`
	VolumePeriod      int     `json:"volume_period" validate:"gt=0"`
	MomentumThreshold float64 `json:"momentum_threshold" validate:"gte=0"` // percent
	VolumeThreshold   float64 `json:"volume_threshold" validate:"gte=0"`   // multiple of average volume
	Window            int     `json:"window" validate:"gtfield=Lookback,gtefield=VolumePeriod"`
	UnitSize          float64 `json:"unit_size" validate:"gt=0"`
}

func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		Lookback:          14,
		VolumePeriod:      20,
		MomentumThreshold: 2,
		VolumeThreshold:   1.5,
		Window:            100,
		UnitSize:          0.1,
	}
}

const (
	trendUp      = "up"
	trendDown    = "down"
	trendNeutral = "neutral"
)

// Momentum classifies the trend from price momentum confirmed by volume and
// holds a position while the trend is up.
type Momentum struct {
	*core
	cfg        MomentumConfig
	prices     *ta.Window
	volumes    *ta.Window
	position   float64
	entryPrice float64
}

func NewMomentum(cfg MomentumConfig, opts ...Option) *Momentum {
	return &Momentum{
		core:    newCore(MomentumName, opts),
		cfg:     cfg,
		prices:  ta.NewWindow(cfg.Window),
		volumes: ta.NewWindow(cfg.Window),
	}
}

func (m *Momentum) Evaluate(tick models.MarketTick) models.Decision {
	return m.evaluate(tick, m.decide)
}

func (m *Momentum) predict(momentum, volumeRatio float64) string {
	if volumeRatio > m.cfg.VolumeThreshold {
		if momentum > m.cfg.MomentumThreshold {
			return trendUp
		}
		if momentum < -m.cfg.MomentumThreshold {
			return trendDown
		}
	}
	return trendNeutral
}

func (m *Momentum) decide(tick models.MarketTick) models.Decision {
	price := tick.Price
	m.prices.Push(price)
	m.volumes.Push(tick.Volume)

	momentum := ta.Momentum(m.prices.Values(), m.cfg.Lookback)
	volumeRatio := ta.VolumeRatio(m.volumes.Values(), m.cfg.VolumePeriod)
	trend := m.predict(momentum, volumeRatio)
	meta := map[string]interface{}{"momentum": momentum, "volumeRatio": volumeRatio, "prediction": trend}

	if trend == trendUp && m.position == 0 {
		m.position = m.cfg.UnitSize
		m.entryPrice = price
		return models.Decision{
			Action:   models.Buy,
			Amount:   m.cfg.UnitSize,
			Price:    price,
			Reason:   fmt.Sprintf("Momentum %.2f%% with volume %.2fx", momentum, volumeRatio),
			Metadata: meta,
		}
	}

	if (trend == trendDown || momentum < 0) && m.position > 0 {
		profit := (price - m.entryPrice) * m.position
		m.position = 0
		return models.Decision{
			Action:     models.Sell,
			Amount:     m.cfg.UnitSize,
			Price:      price,
			Reason:     fmt.Sprintf("Momentum faded to %.2f%%", momentum),
			ProfitLoss: profit,
			Metadata:   meta,
		}
	}

	hold := models.HoldAt(price, fmt.Sprintf("Trend %s, momentum %.2f%%", trend, momentum))
	hold.Metadata = meta
	return hold
}
