package agents

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/models"
)

func TestMEVImplementsOverride(t *testing.T) {
	var a interfaces.Agent = NewMEV(DefaultMEVConfig())
	_, ok := a.(interfaces.SupportsAdminOverride)
	assert.True(t, ok)

	var g interfaces.Agent = NewGrid(DefaultGridConfig())
	_, ok = g.(interfaces.SupportsAdminOverride)
	assert.False(t, ok)
}

func TestMEVNoOpportunity(t *testing.T) {
	m := NewMEV(DefaultMEVConfig(), WithRand(script(0.5)))
	assert.Equal(t, models.Hold, m.Evaluate(tickAt(50000)).Action)
	assert.Empty(t, m.Ledger())
}

func TestMEVEthicsDeclinesSandwich(t *testing.T) {
	m := NewMEV(DefaultMEVConfig(), WithRand(script(0.95, 0.1, 0.5)))
	d := m.Evaluate(tickAt(50000))
	assert.Equal(t, models.Hold, d.Action)
	assert.Contains(t, d.Reason, "sandwich")
	assert.Empty(t, m.Ledger())

	require.NoError(t, m.ApplyOverride("ethics", "false"))
	d = m.Evaluate(tickAt(50000))
	assert.Equal(t, models.Buy, d.Action)
	assert.InDelta(t, 60.0, d.ProfitLoss, 1e-9)
	assert.Equal(t, OpportunitySandwich, d.Metadata["type"])
	assert.InDelta(t, 54.0, d.Metadata["netProfit"].(float64), 1e-9)
}

func TestMEVMinProfit(t *testing.T) {
	m := NewMEV(DefaultMEVConfig(), WithRand(script(0.95, 0.5, 0.2)))
	d := m.Evaluate(tickAt(50000))
	assert.Equal(t, models.Buy, d.Action)
	assert.Equal(t, OpportunityArbitrage, d.Metadata["type"])
	assert.InDelta(t, 30.0, d.ProfitLoss, 1e-9)

	require.NoError(t, m.ApplyOverride("min_profit", "50"))
	assert.Equal(t, models.Hold, m.Evaluate(tickAt(50000)).Action)
	assert.Len(t, m.Ledger(), 1)
}

func TestMEVOverrides(t *testing.T) {
	m := NewMEV(DefaultMEVConfig())
	assert.Equal(t, map[string]string{"ethics": "true", "min_profit": "10"}, m.Overrides())

	err := m.ApplyOverride("aggression", "max")
	assert.Equal(t, ErrUnknownOverride, errors.Cause(err))
	assert.Error(t, m.ApplyOverride("ethics", "maybe"))
	assert.Error(t, m.ApplyOverride("min_profit", "-1"))
	assert.Equal(t, "10", m.Overrides()["min_profit"])
}
