package models

import "time"

// LedgerEntry is an executed buy or sell decision. Entries are never
// modified once recorded.
type LedgerEntry struct {
	ID        string                 `json:"id"`
	AgentID   string                 `json:"agent_id"`
	Strategy  string                 `json:"strategy"`
	Action    Action                 `json:"action"`
	Amount    float64                `json:"amount"`
	Price     float64                `json:"price"`
	Profit    float64                `json:"profit"`
	Reason    string                 `json:"reason"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
