package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tantralabs/sena/models"
)

func ledgerOf(profits ...float64) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, len(profits))
	for i, p := range profits {
		entries[i] = models.LedgerEntry{Action: models.Sell, Profit: p}
	}
	return entries
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, models.Metrics{}, Compute(nil))
}

func TestComputeMixed(t *testing.T) {
	m := Compute(ledgerOf(10, -5, 3))
	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 13.0, m.TotalProfit, 1e-9)
	assert.InDelta(t, 5.0, m.TotalLoss, 1e-9)
	assert.InDelta(t, 8.0, m.NetProfit, 1e-9)
	assert.InDelta(t, 66.67, m.WinRate, 0.01)
	assert.InDelta(t, 2.6, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 6.5, m.AverageProfit, 1e-9)
	assert.InDelta(t, 5.0, m.AverageLoss, 1e-9)

	// cumulative 10, 5, 8 against a peak of 10
	assert.InDelta(t, 5.0, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 1.6, m.RecoveryFactor, 1e-9)

	mean := 8.0 / 3
	std := math.Sqrt((math.Pow(10-mean, 2) + math.Pow(-5-mean, 2) + math.Pow(3-mean, 2)) / 3)
	assert.InDelta(t, mean/std, m.SharpeRatio, 1e-9)
}

func TestZeroProfitTradesCountAsNeither(t *testing.T) {
	m := Compute(ledgerOf(0, 0, 4))
	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 0, m.LosingTrades)
	assert.Equal(t, 0.0, m.ProfitFactor)
	assert.Equal(t, 0.0, m.AverageLoss)
	assert.Equal(t, 0.0, m.RecoveryFactor)
}

func TestSharpeFloorWithoutVariance(t *testing.T) {
	m := Compute(ledgerOf(2, 2, 2))
	assert.InDelta(t, 2.0, m.SharpeRatio, 1e-9)
}

func TestMaxDrawdownFromZeroPeak(t *testing.T) {
	assert.InDelta(t, 7.0, MaxDrawdown([]float64{-3, -4, 2}), 1e-9)
	assert.Equal(t, 0.0, MaxDrawdown([]float64{1, 2, 3}))
}

func TestComputeIsDeterministic(t *testing.T) {
	entries := ledgerOf(1.5, -0.25, 7, -3, 0.1)
	assert.Equal(t, Compute(entries), Compute(entries))
}

func TestAggregate(t *testing.T) {
	totals := Aggregate([]models.Metrics{
		Compute(ledgerOf(10, -5, 3)),
		Compute(ledgerOf(-1)),
		Compute(nil),
	})
	assert.Equal(t, 4, totals.TotalTrades)
	assert.Equal(t, 2, totals.WinningTrades)
	assert.InDelta(t, 50.0, totals.WinRate, 1e-9)
	assert.InDelta(t, 7.0, totals.NetProfit, 1e-9)
}

func TestKeyValues(t *testing.T) {
	out := KeyValues(Compute(ledgerOf(10, -5, 3)))
	assert.Contains(t, out, " NetProfit: 8,\n")
	assert.Contains(t, out, " TotalTrades: 3,\n")
}
