package database

import "github.com/tantralabs/sena/models"

type LedgerRecord struct {
	ID        string  `db:"id"`
	Agent     string  `db:"agent"`
	Strategy  string  `db:"strategy"`
	Action    string  `db:"action"`
	Amount    float64 `db:"amount"`
	Price     float64 `db:"price"`
	Profit    float64 `db:"profit"`
	Reason    string  `db:"reason"`
	Timestamp int64   `db:"timestamp"` // unix ms
}

func ToRecords(entries []models.LedgerEntry) []LedgerRecord {
	records := make([]LedgerRecord, len(entries))
	for i, e := range entries {
		records[i] = LedgerRecord{
			ID:        e.ID,
			Agent:     e.AgentID,
			Strategy:  e.Strategy,
			Action:    string(e.Action),
			Amount:    e.Amount,
			Price:     e.Price,
			Profit:    e.Profit,
			Reason:    e.Reason,
			Timestamp: e.Timestamp.UnixMilli(),
		}
	}
	return records
}
