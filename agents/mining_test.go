package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tantralabs/sena/models"
)

func TestMiningShutsLeastEfficientFirst(t *testing.T) {
	m := NewMining(DefaultMiningConfig())

	d := m.Evaluate(tickAt(50000))
	require.Equal(t, models.Sell, d.Action)
	assert.Equal(t, "miner_2", d.Metadata["minerId"])
	assert.Equal(t, 100.0, d.Amount)
	// 6.25kW at $0.10 for a day
	assert.InDelta(t, -15.0/24, d.ProfitLoss, 1e-9)

	d = m.Evaluate(tickAt(50000))
	assert.Equal(t, "miner_1", d.Metadata["minerId"])
	assert.Empty(t, m.ActiveMiners())

	assert.Equal(t, models.Hold, m.Evaluate(tickAt(50000)).Action)
	assert.Len(t, m.Ledger(), 2)
}

func TestMiningActivatesIdleMinerWhenProfitable(t *testing.T) {
	m := NewMining(DefaultMiningConfig())
	d := m.Evaluate(tickAt(2000000))
	require.Equal(t, models.Buy, d.Action)
	assert.Equal(t, "miner_3", d.Metadata["minerId"])
	assert.InDelta(t, (42.0-15.0)/24, d.ProfitLoss, 1e-9)
	assert.Equal(t, []string{"miner_1", "miner_2", "miner_3"}, m.ActiveMiners())

	assert.Equal(t, models.Hold, m.Evaluate(tickAt(2000000)).Action)
}
