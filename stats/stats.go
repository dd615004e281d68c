// Package stats derives performance metrics from an agent ledger.
package stats

import (
	"math"

	"github.com/fatih/structs"
	"gonum.org/v1/gonum/stat"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/utils"
)

// Compute calculates the metrics for a ledger. It is a pure function of the
// entries and their order.
func Compute(entries []models.LedgerEntry) models.Metrics {
	m := models.Metrics{TotalTrades: len(entries)}
	if len(entries) == 0 {
		return m
	}

	profits := make([]float64, len(entries))
	for i, e := range entries {
		profits[i] = e.Profit
		if e.Profit > 0 {
			m.WinningTrades++
			m.TotalProfit += e.Profit
		} else if e.Profit < 0 {
			m.LosingTrades++
			m.TotalLoss += -e.Profit
		}
	}

	m.NetProfit = m.TotalProfit - m.TotalLoss
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	if m.WinningTrades > 0 {
		m.AverageProfit = m.TotalProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = m.TotalLoss / float64(m.LosingTrades)
	}
	if m.TotalLoss > 0 {
		m.ProfitFactor = m.TotalProfit / m.TotalLoss
	}

	m.SharpeRatio = sharpe(profits)
	m.MaxDrawdown = MaxDrawdown(profits)
	if m.MaxDrawdown > 0 {
		m.RecoveryFactor = m.NetProfit / m.MaxDrawdown
	}
	return m
}

// sharpe is mean over population standard deviation. A zero deviation is
// replaced with 1.
func sharpe(profits []float64) float64 {
	mean := stat.Mean(profits, nil)
	std := stat.PopStdDev(profits, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	return mean / std
}

// MaxDrawdown is the largest fall from the running peak of cumulative profit.
// The peak starts at zero.
func MaxDrawdown(profits []float64) float64 {
	var peak, cum, maxDD float64
	for _, p := range profits {
		cum += p
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Totals is the trade weighted roll up of several agents' metrics.
type Totals struct {
	TotalTrades   int
	WinningTrades int
	WinRate       float64
	NetProfit     float64
}

func Aggregate(all []models.Metrics) Totals {
	var t Totals
	for _, m := range all {
		t.TotalTrades += m.TotalTrades
		t.WinningTrades += m.WinningTrades
		t.NetProfit += m.NetProfit
	}
	if t.TotalTrades > 0 {
		t.WinRate = float64(t.WinningTrades) / float64(t.TotalTrades) * 100
	}
	return t
}

// Fields flattens metrics into a map keyed by field name.
func Fields(m models.Metrics) map[string]interface{} {
	return structs.Map(m)
}

// KeyValues renders metrics for log output.
func KeyValues(m models.Metrics) string {
	fields := Fields(m)
	for k, v := range fields {
		if f, ok := v.(float64); ok {
			fields[k] = utils.ToFixed(f, 4)
		}
	}
	return utils.CreateKeyValuePairs(fields, true)
}
