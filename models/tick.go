package models

import "time"

// MarketTick is a single market observation handed to an agent.
type MarketTick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	BidPrice  float64   `json:"bid_price"`
	AskPrice  float64   `json:"ask_price"`
	Timestamp time.Time `json:"timestamp"`
}

// Candle is a stored OHLCV row that can be replayed as ticks.
type Candle struct {
	Symbol    string  `csv:"symbol" db:"symbol"`
	Timestamp int64   `csv:"timestamp" db:"timestamp"`
	Open      float64 `csv:"open" db:"open"`
	High      float64 `csv:"high" db:"high"`
	Low       float64 `csv:"low" db:"low"`
	Close     float64 `csv:"close" db:"close"`
	Volume    float64 `csv:"volume" db:"volume"`
}

// Tick converts a candle into a tick priced at the close. Bid and ask are
// placed halfSpread (a fraction, 0.0005 = 5bps) either side of the close.
func (c Candle) Tick(halfSpread float64) MarketTick {
	return MarketTick{
		Symbol:    c.Symbol,
		Price:     c.Close,
		Volume:    c.Volume,
		BidPrice:  c.Close * (1 - halfSpread),
		AskPrice:  c.Close * (1 + halfSpread),
		Timestamp: time.Unix(0, c.Timestamp*int64(time.Millisecond)).UTC(),
	}
}
