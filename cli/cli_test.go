package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tantralabs/sena"
	"github.com/tantralabs/sena/agents"
	"github.com/tantralabs/sena/data"
	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/notify"
	"github.com/tantralabs/sena/ratelimit"
)

type failingSource struct{}

func (failingSource) Next(context.Context) (models.MarketTick, error) {
	return models.MarketTick{}, errors.New("feed offline")
}

func newTestShell(t *testing.T, src interfaces.TickSource) (*Shell, *bytes.Buffer) {
	t.Helper()
	hub := notify.NewHub()
	grid := agents.NewGrid(agents.GridConfig{BasePrice: 100, Levels: 1, RangePercent: 1, UnitSize: 1})
	mev := agents.NewMEV(agents.DefaultMEVConfig(), agents.WithRand(agents.NewRand(1)))
	orch, err := sena.New([]interfaces.Agent{grid, mev}, sena.WithTickSource(src), sena.WithNotifier(hub))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return NewShell(orch, ratelimit.New(100, time.Minute), hub, out), out
}

func replay(prices ...float64) *data.Replay {
	ticks := make([]models.MarketTick, len(prices))
	for i, p := range prices {
		ticks[i] = models.MarketTick{Symbol: "BTC/USDT", Price: p, BidPrice: p, AskPrice: p, Volume: 1}
	}
	return data.NewReplay(ticks)
}

func TestShellLifecycle(t *testing.T) {
	s, _ := newTestShell(t, replay(100))
	ctx := context.Background()

	assert.Equal(t, "grid started (Grid Trading)", s.Handle(ctx, "u", "start grid"))
	assert.Contains(t, s.Handle(ctx, "u", "status"), "Active agents: 1")
	assert.Equal(t, "grid stopped", s.Handle(ctx, "u", "stop grid"))
	assert.Equal(t, "grid stopped", s.Handle(ctx, "u", "/stop_bot grid"))
	assert.Contains(t, s.Handle(ctx, "u", "status"), "Active agents: 0")
	assert.Contains(t, s.Handle(ctx, "u", "agents"), "Strategy: MEV")
}

func TestShellErrorsAreDistinguished(t *testing.T) {
	s, _ := newTestShell(t, failingSource{})
	ctx := context.Background()

	reply := s.Handle(ctx, "u", "start nope")
	assert.True(t, strings.HasPrefix(reply, "Not found:"), reply)

	reply = s.Handle(ctx, "u", "execute grid")
	assert.True(t, strings.HasPrefix(reply, "Execution failed:"), reply)
	assert.Contains(t, reply, "feed offline")

	assert.Contains(t, s.Handle(ctx, "u", "start"), "Please specify an agent name")
	assert.Contains(t, s.Handle(ctx, "u", "launch"), "Unknown command")
}

func TestShellExecuteAndHistory(t *testing.T) {
	s, _ := newTestShell(t, replay(100, 99, 100))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Handle(ctx, "u", "execute grid")
	}
	history := s.Handle(ctx, "u", "history grid")
	assert.Contains(t, history, "BUY")
	assert.Contains(t, history, "$99.00")

	metrics := s.Handle(ctx, "u", "metrics grid")
	assert.Contains(t, metrics, "GRID metrics")
	assert.Contains(t, metrics, "Total trades: 1")

	assert.Contains(t, s.Handle(ctx, "u", "metrics"), "Performance overview")
	assert.Contains(t, s.Handle(ctx, "u", "history grid x"), "invalid count")
}

func TestShellOverride(t *testing.T) {
	s, _ := newTestShell(t, replay(100))
	ctx := context.Background()

	assert.Contains(t, s.Handle(ctx, "u", "override mev"), "ethics = true")
	assert.Contains(t, s.Handle(ctx, "u", "override mev min_profit 42"), "min_profit = 42")
	assert.Contains(t, s.Handle(ctx, "u", "override grid ethics false"), "does not support overrides")
	assert.Contains(t, s.Handle(ctx, "u", "override mev ethics"), "usage")
}

func TestShellBatch(t *testing.T) {
	s, _ := newTestShell(t, replay(100, 101))
	ctx := context.Background()
	assert.Contains(t, s.Handle(ctx, "u", "startall"), "2/2 succeeded")
	assert.Contains(t, s.Handle(ctx, "u", "executeall"), "2/2 succeeded")
	assert.Contains(t, s.Handle(ctx, "u", "executeall"), "0/2 succeeded")
	assert.Contains(t, s.Handle(ctx, "u", "stopall"), "2/2 succeeded")
}

func TestShellRateLimit(t *testing.T) {
	s, _ := newTestShell(t, replay(100))
	s.limiter = ratelimit.New(2, time.Minute)
	ctx := context.Background()

	s.Handle(ctx, "alice", "help")
	s.Handle(ctx, "alice", "help")
	assert.Contains(t, s.Handle(ctx, "alice", "help"), "Rate limit exceeded")
	assert.Contains(t, s.Handle(ctx, "bob", "help"), "Commands:")
}

func TestShellNotifications(t *testing.T) {
	s, out := newTestShell(t, replay(100))
	ctx := context.Background()

	assert.Equal(t, "Notifications enabled", s.Handle(ctx, "u", "notify on"))
	s.Handle(ctx, "u", "start grid")
	assert.Contains(t, out.String(), "[agent_started] grid")

	assert.Equal(t, "Notifications disabled", s.Handle(ctx, "u", "notify off"))
	out.Reset()
	s.Handle(ctx, "u", "stop grid")
	assert.Empty(t, out.String())
}

func TestShellNotificationsByType(t *testing.T) {
	s, out := newTestShell(t, replay(100))
	ctx := context.Background()

	assert.Contains(t, s.Handle(ctx, "u", "notify on trades"), `Unknown event type "trades"`)
	assert.Equal(t, "Notifications enabled for agent_stopped", s.Handle(ctx, "u", "notify on agent_stopped"))
	s.Handle(ctx, "u", "start grid")
	assert.Empty(t, out.String())
	s.Handle(ctx, "u", "stop grid")
	assert.Contains(t, out.String(), "[agent_stopped] grid")

	assert.Equal(t, "Notifications disabled for agent_stopped", s.Handle(ctx, "u", "notify off agent_stopped"))
	out.Reset()
	s.Handle(ctx, "u", "start grid")
	s.Handle(ctx, "u", "stop grid")
	assert.Empty(t, out.String())
}

func TestShellRun(t *testing.T) {
	s, out := newTestShell(t, replay(100))
	err := s.Run(context.Background(), "u", strings.NewReader("help\nstatus\nquit\nagents\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "Total agents: 2")
	assert.NotContains(t, out.String(), "Available agents")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1234.57", money(1234.5678))
	assert.Equal(t, "-$5.00", money(-5))
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "66.67%", pct(200.0/3, 2))
}

func TestRootSimulate(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"simulate", "--seed", "7", "--ticks", "50", "--log-level", "error", "--out", dir})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Total agents: 14")
	assert.Contains(t, out.String(), "ledger files")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	assert.FileExists(t, filepath.Join(dir, "dca.csv"))
}

func TestRootSimulateFromCSV(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "candles.csv")
	body := "symbol,timestamp,open,high,low,close,volume\n" +
		"BTC,1000,1,1,1,100,5\n" +
		"BTC,2000,1,1,1,99,5\n" +
		"BTC,3000,1,1,1,100,5\n"
	require.NoError(t, os.WriteFile(fileName, []byte(body), 0o644))

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"simulate", "--seed", "1", "--ticks", "0", "--log-level", "error", "--csv", fileName, "--agents", "dca"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Active agents: 1")
}

func TestRootExportNeedsTarget(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "--log-level", "error"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
