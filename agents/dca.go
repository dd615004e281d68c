package agents

import (
	"fmt"
	"time"

	"github.com/tantralabs/sena/models"
)

type DCAConfig struct {
	Interval models.Duration `json:"interval" validate:"gt=0"`
	Amount   float64         `json:"amount" validate:"gt=0"` // quote currency spent per purchase
}

func DefaultDCAConfig() DCAConfig {
	return DCAConfig{Interval: models.NewDuration(24 * time.Hour), Amount: 100}
}

// DCA buys a fixed quote amount once per interval and tracks its cost basis.
type DCA struct {
	*core
	cfg           DCAConfig
	lastPurchase  time.Time
	totalInvested float64
	totalUnits    float64
}

func NewDCA(cfg DCAConfig, opts ...Option) *DCA {
	return &DCA{core: newCore(DCAName, opts), cfg: cfg}
}

func (d *DCA) Evaluate(tick models.MarketTick) models.Decision {
	return d.evaluate(tick, d.decide)
}

func (d *DCA) averageCost() float64 {
	if d.totalUnits == 0 {
		return 0
	}
	return d.totalInvested / d.totalUnits
}

func (d *DCA) decide(tick models.MarketTick) models.Decision {
	price := tick.Price
	now := d.at(tick)
	if price <= 0 {
		return models.HoldAt(price, "evaluation anomaly: non-positive price")
	}

	if !d.lastPurchase.IsZero() && now.Sub(d.lastPurchase) < d.cfg.Interval.Duration {
		next := d.lastPurchase.Add(d.cfg.Interval.Duration)
		hold := models.HoldAt(price, fmt.Sprintf("Next purchase in %s", next.Sub(now).Round(time.Minute)))
		hold.Metadata = map[string]interface{}{
			"averagePrice":   d.averageCost(),
			"unrealizedPnL":  (price - d.averageCost()) * d.totalUnits,
			"nextPurchaseAt": next,
		}
		return hold
	}

	units := d.cfg.Amount / price
	d.totalInvested += d.cfg.Amount
	d.totalUnits += units
	d.lastPurchase = now
	avg := d.averageCost()

	return models.Decision{
		Action:     models.Buy,
		Amount:     units,
		Price:      price,
		Reason:     fmt.Sprintf("DCA purchase of $%.2f", d.cfg.Amount),
		ProfitLoss: (price - avg) * d.totalUnits,
		Metadata: map[string]interface{}{
			"totalInvested": d.totalInvested,
			"totalUnits":    d.totalUnits,
			"averagePrice":  avg,
		},
	}
}
