package agents

import (
	"fmt"

	"github.com/tantralabs/sena/models"
)

type AMMConfig struct {
	ReserveA  float64 `json:"reserve_a" validate:"gt=0"`
	ReserveB  float64 `json:"reserve_b" validate:"gt=0"`
	FeeRate   float64 `json:"fee_rate" validate:"gte=0,lt=1"`
	SwapAbove float64 `json:"swap_above" validate:"gte=0,lte=1"` // draws above this produce a swap
	MaxInputA float64 `json:"max_input_a" validate:"gte=0"`
	MaxInputB float64 `json:"max_input_b" validate:"gte=0"`
}

func DefaultAMMConfig() AMMConfig {
	return AMMConfig{
		ReserveA:  1000,
		ReserveB:  50000,
		FeeRate:   0.003,
		SwapAbove: 0.7,
		MaxInputA: 10,
		MaxInputB: 5000,
	}
}

// AMM is a constant product pool. Swaps keep the fee inside the pool so the
// reserve product never falls.
type AMM struct {
	*core
	cfg       AMMConfig
	reserveA  float64
	reserveB  float64
	totalFees float64
}

func NewAMM(cfg AMMConfig, opts ...Option) *AMM {
	return &AMM{
		core:     newCore(AMMName, opts),
		cfg:      cfg,
		reserveA: cfg.ReserveA,
		reserveB: cfg.ReserveB,
	}
}

func (a *AMM) Evaluate(tick models.MarketTick) models.Decision {
	return a.evaluate(tick, a.decide)
}

// Reserves returns the current pool balances of token A and token B.
func (a *AMM) Reserves() (float64, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reserveA, a.reserveB
}

func (a *AMM) TotalFees() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalFees
}

// Quote is the output of swapping input of token A (or B when inA is false)
// against the current reserves.
func (a *AMM) Quote(input float64, inA bool) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quote(input, inA)
}

func (a *AMM) quote(input float64, inA bool) float64 {
	k := a.reserveA * a.reserveB
	effective := input * (1 - a.cfg.FeeRate)
	if inA {
		return a.reserveB - k/(a.reserveA+effective)
	}
	return a.reserveA - k/(a.reserveB+effective)
}

func (a *AMM) decide(tick models.MarketTick) models.Decision {
	poolPrice := a.reserveB / a.reserveA
	if a.draw() <= a.cfg.SwapAbove {
		return models.HoldAt(poolPrice, fmt.Sprintf("Pool %.4f A / %.2f B, fees %.4f", a.reserveA, a.reserveB, a.totalFees))
	}

	inA := a.draw() > 0.5
	limit := a.cfg.MaxInputB
	if inA {
		limit = a.cfg.MaxInputA
	}
	input := a.draw() * limit
	if input <= 0 {
		return models.HoldAt(poolPrice, "Empty swap skipped")
	}

	output := a.quote(input, inA)
	fee := input * a.cfg.FeeRate
	a.totalFees += fee

	action := models.Sell
	if inA {
		action = models.Buy
		a.reserveA += input
		a.reserveB -= output
	} else {
		a.reserveB += input
		a.reserveA -= output
	}

	return models.Decision{
		Action:     action,
		Amount:     input,
		Price:      poolPrice,
		Reason:     fmt.Sprintf("Swapped %.4f for %.4f", input, output),
		ProfitLoss: fee,
		Metadata: map[string]interface{}{
			"output":   output,
			"fee":      fee,
			"reserveA": a.reserveA,
			"reserveB": a.reserveB,
		},
	}
}
