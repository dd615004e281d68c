package sena

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tantralabs/sena/agents"
	"github.com/tantralabs/sena/data"
	"github.com/tantralabs/sena/export"
	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/settings"
)

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Notify(e models.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EventType
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type failingSource struct{ err error }

func (f failingSource) Next(context.Context) (models.MarketTick, error) {
	return models.MarketTick{}, f.err
}

func tickAt(price float64) models.MarketTick {
	return models.MarketTick{Symbol: "BTC/USDT", Price: price, BidPrice: price, AskPrice: price, Volume: 1}
}

func narrowGrid() *agents.Grid {
	return agents.NewGrid(agents.GridConfig{BasePrice: 100, Levels: 1, RangePercent: 1, UnitSize: 1})
}

func testFleet(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	cfg := settings.Default()
	cfg.Seed = 42
	o, err := NewFleet(cfg, opts...)
	require.NoError(t, err)
	return o
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]interfaces.Agent{narrowGrid(), narrowGrid()})
	assert.True(t, errors.Is(err, ErrDuplicateAgent))
}

func TestFleetRegistersEveryAgent(t *testing.T) {
	o := testFleet(t)
	names := o.List()
	assert.Len(t, names, 14)
	assert.ElementsMatch(t, agents.Names, names)
	assert.IsIncreasing(t, names)
}

func TestFleetWithFlatSimulator(t *testing.T) {
	cfg := settings.Default()
	cfg.Seed = 7
	cfg.Simulator.Volatility = 0
	require.NoError(t, settings.Validate(cfg))

	o, err := NewFleet(cfg)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		d, err := o.Execute(context.Background(), agents.DCAName)
		require.NoError(t, err)
		assert.Equal(t, cfg.Simulator.StartPrice, d.Price)
	}
}

func TestUnknownAgent(t *testing.T) {
	o := testFleet(t)
	_, err := o.Status("nope")
	assert.True(t, errors.Is(err, ErrAgentNotFound))
	assert.Contains(t, err.Error(), `"nope"`)
	assert.True(t, errors.Is(o.Start("nope"), ErrAgentNotFound))
	assert.True(t, errors.Is(o.Stop("nope"), ErrAgentNotFound))
	_, err = o.ExecuteOnce("nope", tickAt(1))
	assert.True(t, errors.Is(err, ErrAgentNotFound))
	_, err = o.Execute(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrAgentNotFound))
	assert.False(t, errors.Is(err, ErrExecutionFailed))
	_, err = o.Ledger("nope")
	assert.True(t, errors.Is(err, ErrAgentNotFound))
}

func TestStopIsIdempotent(t *testing.T) {
	o := testFleet(t)
	require.NoError(t, o.Start(agents.GridName))
	for i := 0; i < 2; i++ {
		require.NoError(t, o.Stop(agents.GridName))
		s, err := o.Status(agents.GridName)
		require.NoError(t, err)
		assert.False(t, s.Active)
	}
}

func TestExecuteOnceIgnoresActiveFlag(t *testing.T) {
	rec := &recorder{}
	o, err := New([]interfaces.Agent{narrowGrid()}, WithNotifier(rec))
	require.NoError(t, err)

	var actions []models.Action
	for _, p := range []float64{100, 99, 100} {
		d, err := o.ExecuteOnce(agents.GridName, tickAt(p))
		require.NoError(t, err)
		actions = append(actions, d.Action)
	}
	assert.Equal(t, []models.Action{models.Hold, models.Buy, models.Hold}, actions)

	s, err := o.Status(agents.GridName)
	require.NoError(t, err)
	assert.False(t, s.Active)
	assert.Equal(t, 1, s.TotalTrades)
	assert.Equal(t, "Grid Trading", s.Strategy)

	assert.Equal(t, []models.EventType{models.EventTradeExecuted}, rec.types())
	require.NotNil(t, rec.events[0].Decision)
	assert.Equal(t, 99.0, rec.events[0].Decision.Price)
}

func TestLifecycleEvents(t *testing.T) {
	rec := &recorder{}
	o, err := New([]interfaces.Agent{narrowGrid()}, WithNotifier(rec))
	require.NoError(t, err)
	require.NoError(t, o.Start(agents.GridName))
	require.NoError(t, o.Stop(agents.GridName))
	assert.Equal(t, []models.EventType{models.EventAgentStarted, models.EventAgentStopped}, rec.types())
}

func TestSystemNetPnLIsSumOfAgents(t *testing.T) {
	o := testFleet(t)
	o.StartAll()
	require.NoError(t, o.Stop(agents.MiningName))
	require.NoError(t, o.Stop(agents.DCAName))

	n, err := o.Run(context.Background(), 300)
	require.NoError(t, err)
	assert.Equal(t, 300, n)

	var sum float64
	var trades int
	for _, st := range o.StatusAll() {
		sum += st.NetPnL
		trades += st.TotalTrades
	}
	sys := o.SystemStatus()
	assert.InDelta(t, sum, sys.NetPnL, 1e-6)
	assert.Equal(t, trades, sys.TotalTrades)
	assert.Equal(t, 14, sys.TotalAgents)
	assert.Equal(t, 12, sys.ActiveAgents)
	assert.Equal(t, 14, sys.OnlineAgents)

	m, err := o.Metrics(agents.MiningName)
	require.NoError(t, err)
	assert.Zero(t, m.TotalTrades)
}

func TestSystemWinRateIsTradeWeighted(t *testing.T) {
	o := testFleet(t)
	o.StartAll()
	_, err := o.Run(context.Background(), 200)
	require.NoError(t, err)

	var wins, trades int
	for _, m := range o.MetricsAll() {
		wins += m.WinningTrades
		trades += m.TotalTrades
	}
	require.Greater(t, trades, 0)
	assert.InDelta(t, float64(wins)/float64(trades)*100, o.SystemStatus().WinRate, 1e-9)
}

func TestBatchReportsPerAgent(t *testing.T) {
	o := testFleet(t)
	results := o.StartAll()
	require.Len(t, results, 14)
	for _, r := range results {
		assert.True(t, r.OK, r.Agent)
		assert.Equal(t, "started", r.Message)
	}
	assert.Equal(t, 14, o.SystemStatus().ActiveAgents)

	for _, r := range o.ExecuteAll(context.Background()) {
		assert.True(t, r.OK, r.Message)
	}

	o.StopAll()
	assert.Equal(t, 0, o.SystemStatus().ActiveAgents)
}

func TestExecuteSourceFailure(t *testing.T) {
	cause := errors.New("feed offline")
	rec := &recorder{}
	o, err := New([]interfaces.Agent{narrowGrid()}, WithTickSource(failingSource{err: cause}), WithNotifier(rec))
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), agents.GridName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecutionFailed))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrAgentNotFound))
	assert.Contains(t, err.Error(), "feed offline")

	s, err := o.Status(agents.GridName)
	require.NoError(t, err)
	assert.False(t, s.Online)
	assert.Zero(t, s.TotalTrades)
	assert.Equal(t, 0, o.SystemStatus().OnlineAgents)
	assert.Equal(t, []models.EventType{models.EventError}, rec.types())

	results := o.ExecuteAll(context.Background())
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Message, "execution of grid failed")
}

func TestExecuteWithoutSource(t *testing.T) {
	o, err := New([]interfaces.Agent{narrowGrid()})
	require.NoError(t, err)
	_, err = o.Execute(context.Background(), agents.GridName)
	assert.True(t, errors.Is(err, ErrExecutionFailed))
	_, err = o.Run(context.Background(), 1)
	assert.Error(t, err)
}

func TestExhaustedSourceMarksAgentOffline(t *testing.T) {
	replay := data.NewReplay([]models.MarketTick{tickAt(100)})
	o, err := New([]interfaces.Agent{narrowGrid()}, WithTickSource(replay))
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), agents.GridName)
	require.NoError(t, err)
	_, err = o.Execute(context.Background(), agents.GridName)
	assert.True(t, errors.Is(err, data.ErrExhausted))
	s, _ := o.Status(agents.GridName)
	assert.False(t, s.Online)
}

func TestOverride(t *testing.T) {
	o := testFleet(t)
	require.NoError(t, o.Override(agents.MEVName, "ethics", "false"))
	require.NoError(t, o.Override(agents.MEVName, "min_profit", "25"))
	values, err := o.Overrides(agents.MEVName)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ethics": "false", "min_profit": "25"}, values)

	err = o.Override(agents.MEVName, "aggression", "max")
	assert.True(t, errors.Is(err, agents.ErrUnknownOverride))

	err = o.Override(agents.GridName, "ethics", "false")
	assert.True(t, errors.Is(err, ErrOverrideUnsupported))
	_, err = o.Overrides(agents.GridName)
	assert.True(t, errors.Is(err, ErrOverrideUnsupported))
}

func TestRunOnlyActiveAgents(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ticks []models.MarketTick
	for i := 0; i < 3; i++ {
		tick := tickAt(100)
		tick.Timestamp = start.Add(time.Duration(i) * 24 * time.Hour)
		ticks = append(ticks, tick)
	}
	dca := agents.NewDCA(agents.DefaultDCAConfig())
	grid := narrowGrid()
	o, err := New([]interfaces.Agent{dca, grid}, WithTickSource(data.NewReplay(ticks)))
	require.NoError(t, err)
	require.NoError(t, o.Start(agents.DCAName))

	n, err := o.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, dca.Ledger(), 3)
	assert.Empty(t, grid.Ledger())
}

func TestRunStopsOnCancel(t *testing.T) {
	o := testFleet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := o.Run(ctx, 0)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, context.Canceled)
}

type capture struct {
	reports []export.AgentReport
}

func (c *capture) Write(reports []export.AgentReport, _ time.Time) error {
	c.reports = reports
	return nil
}

func TestReportsAndLedgerFiles(t *testing.T) {
	o := testFleet(t)
	o.StartAll()
	_, err := o.Run(context.Background(), 100)
	require.NoError(t, err)

	c := &capture{}
	require.NoError(t, o.Publish(c))
	require.Len(t, c.reports, 14)
	withTrades := 0
	for _, r := range c.reports {
		assert.Equal(t, len(r.Trades), r.Metrics.TotalTrades)
		if len(r.Trades) > 0 {
			withTrades++
		}
	}

	dir := filepath.Join(t.TempDir(), "ledgers")
	files, err := o.SaveLedgers(dir)
	require.NoError(t, err)
	assert.Len(t, files, withTrades)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	o.LogMetrics()
	o.PublishPerformance()
}
