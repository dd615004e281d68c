package interfaces

import (
	"github.com/tantralabs/sena/models"
)

// Agent is a strategy that turns ticks into decisions and keeps a ledger of
// what it executed.
type Agent interface {
	Name() string
	Strategy() string
	Evaluate(tick models.MarketTick) models.Decision
	Activate()
	Deactivate()
	IsActive() bool
	Metrics() models.Metrics
	Ledger() []models.LedgerEntry
}

// SupportsAdminOverride is implemented by agents exposing runtime risk knobs.
type SupportsAdminOverride interface {
	ApplyOverride(key, value string) error
	Overrides() map[string]string
}
