package models

// Action is the side of a decision.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Hold Action = "hold"
)

// Valid reports whether a is one of buy, sell or hold.
func (a Action) Valid() bool {
	return a == Buy || a == Sell || a == Hold
}

// Decision is the output of a single agent evaluation.
type Decision struct {
	Action     Action                 `json:"action"`
	Amount     float64                `json:"amount"`
	Price      float64                `json:"price"`
	Reason     string                 `json:"reason"`
	ProfitLoss float64                `json:"profit_loss"` // realized pnl attributed to this decision, always 0 on hold
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// IsTrade is true for buy and sell decisions.
func (d Decision) IsTrade() bool {
	return d.Action == Buy || d.Action == Sell
}

// HoldAt builds a hold decision at price.
func HoldAt(price float64, reason string) Decision {
	return Decision{Action: Hold, Price: price, Reason: reason}
}
