// Package ta provides the technical analysis indicators used by the strategy agents
// using github.com/markcheno/go-talib where talib's definition matches
package ta

import (
	talib "github.com/markcheno/go-talib"
)

// EMA returns the latest exponential moving average of prices. The average is
// seeded with the simple mean of the first period values. With fewer than
// period values the last price is returned.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 1 || len(prices) < period {
		return prices[len(prices)-1]
	}
	ema := talib.Ema(prices, period)
	return ema[len(ema)-1]
}

// SMA returns the simple average of the last period values, or of every value
// when there are fewer than period.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		period = len(values)
	}
	sma := talib.Sma(values[len(values)-period:], period)
	return sma[len(sma)-1]
}

// RSI calculates the relative strength index over the last period changes
// using simple averages of gains and losses. Scales from 0-100, 50 when there
// is not enough data and 100 when there were no losses.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}
	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Momentum is the percent change between the latest price and the price
// lookback-1 observations earlier. Zero until lookback prices exist.
func Momentum(prices []float64, lookback int) float64 {
	if lookback < 2 || len(prices) < lookback {
		return 0
	}
	roc := talib.Roc(prices[len(prices)-lookback:], lookback-1)
	return roc[len(roc)-1]
}

// VolumeRatio compares the latest volume to the average of the last period
// volumes. One until period volumes exist.
func VolumeRatio(volumes []float64, period int) float64 {
	if period <= 0 || len(volumes) < period {
		return 1
	}
	avg := SMA(volumes, period)
	if avg == 0 {
		return 1
	}
	return volumes[len(volumes)-1] / avg
}
