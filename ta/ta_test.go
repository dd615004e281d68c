package ta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func linear(from, to float64) []float64 {
	out := []float64{}
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func TestEMA(t *testing.T) {
	assert.Equal(t, 0.0, EMA(nil, 9))
	// fewer prices than the period returns the last price
	assert.Equal(t, 3.0, EMA([]float64{1, 2, 3}, 9))
	// for a linear series an sma seeded ema lags by (period-1)/2
	assert.InDelta(t, 9.0, EMA(linear(1, 10), 3), 1e-9)
}

func TestSMA(t *testing.T) {
	assert.InDelta(t, 8.5, SMA(linear(1, 10), 4), 1e-9)
	assert.InDelta(t, 2.0, SMA([]float64{1, 2, 3}, 10), 1e-9)
}

func TestRSI(t *testing.T) {
	assert.Equal(t, 50.0, RSI(linear(1, 14), 14))
	assert.Equal(t, 100.0, RSI(linear(1, 15), 14))

	zigzag := []float64{10}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			zigzag = append(zigzag, zigzag[len(zigzag)-1]+1)
		} else {
			zigzag = append(zigzag, zigzag[len(zigzag)-1]-1)
		}
	}
	assert.InDelta(t, 50.0, RSI(zigzag, 14), 1e-9)

	falling := []float64{}
	for v := 30.0; v >= 15; v-- {
		falling = append(falling, v)
	}
	assert.InDelta(t, 0.0, RSI(falling, 14), 1e-9)
}

func TestMomentum(t *testing.T) {
	assert.Equal(t, 0.0, Momentum(linear(1, 13), 14))

	prices := make([]float64, 14)
	for i := range prices {
		prices[i] = 100
	}
	prices[13] = 110
	assert.InDelta(t, 10.0, Momentum(prices, 14), 1e-9)

	prices = append([]float64{1, 2, 3}, prices...)
	assert.InDelta(t, 10.0, Momentum(prices, 14), 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	assert.Equal(t, 1.0, VolumeRatio([]float64{1, 2}, 20))

	volumes := make([]float64, 20)
	for i := range volumes {
		volumes[i] = 1
	}
	volumes[19] = 2.5
	assert.InDelta(t, 2.5/1.075, VolumeRatio(volumes, 20), 1e-9)
}

func TestWindowDropsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}
	assert.Equal(t, []float64{3, 4, 5}, w.Values())
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, 5.0, w.Last())
	assert.InDelta(t, 4.0, w.Mean(), 1e-9)
}
