// Package sena runs a fleet of simulated strategy agents: a fixed registry
// with lifecycle control, single and batch execution, and aggregated status.
package sena

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/stats"
)

type entry struct {
	agent interfaces.Agent
	// online is false while the agent's last tick pull failed.
	online atomic.Bool
}

// Orchestrator owns the agent registry. The registry is fixed at
// construction; every agent guards its own state.
type Orchestrator struct {
	entries  map[string]*entry
	names    []string
	source   interfaces.TickSource
	notifier interfaces.Notifier
	now      func() time.Time
}

type Option func(*Orchestrator)

// WithTickSource sets where Execute, ExecuteAll and Run pull ticks from.
func WithTickSource(src interfaces.TickSource) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

func WithNotifier(n interfaces.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

func New(agents []interfaces.Agent, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		entries: make(map[string]*entry, len(agents)),
		now:     time.Now,
	}
	for _, a := range agents {
		name := a.Name()
		if _, ok := o.entries[name]; ok {
			return nil, errors.Wrapf(ErrDuplicateAgent, "%q", name)
		}
		e := &entry{agent: a}
		e.online.Store(true)
		o.entries[name] = e
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	for _, opt := range opts {
		opt(o)
	}
	logger.Infof("Initialized %d agents", len(o.names))
	return o, nil
}

func (o *Orchestrator) lookup(name string) (*entry, error) {
	e, ok := o.entries[name]
	if !ok {
		return nil, notFound(name)
	}
	return e, nil
}

func (o *Orchestrator) notify(t models.EventType, agent string, msg string, d *models.Decision) {
	if o.notifier == nil {
		return
	}
	o.notifier.Notify(models.Event{Type: t, Agent: agent, Message: msg, Decision: d, Time: o.now()})
}

// List returns the registered names, sorted.
func (o *Orchestrator) List() []string {
	return append([]string(nil), o.names...)
}

func (o *Orchestrator) Start(name string) error {
	e, err := o.lookup(name)
	if err != nil {
		return err
	}
	e.agent.Activate()
	o.notify(models.EventAgentStarted, name, fmt.Sprintf("%s started", e.agent.Strategy()), nil)
	return nil
}

// Stop deactivates the agent. Stopping an inactive agent is not an error.
func (o *Orchestrator) Stop(name string) error {
	e, err := o.lookup(name)
	if err != nil {
		return err
	}
	e.agent.Deactivate()
	o.notify(models.EventAgentStopped, name, fmt.Sprintf("%s stopped", e.agent.Strategy()), nil)
	return nil
}

// ExecuteOnce evaluates tick on the named agent whether or not it is active.
func (o *Orchestrator) ExecuteOnce(name string, tick models.MarketTick) (models.Decision, error) {
	e, err := o.lookup(name)
	if err != nil {
		return models.Decision{}, err
	}
	return o.evaluate(e, tick), nil
}

func (o *Orchestrator) evaluate(e *entry, tick models.MarketTick) models.Decision {
	d := e.agent.Evaluate(tick)
	if d.IsTrade() {
		msg := fmt.Sprintf("%s %s %.8g @ %.2f: %s", e.agent.Name(), d.Action, d.Amount, d.Price, d.Reason)
		o.notify(models.EventTradeExecuted, e.agent.Name(), msg, &d)
	}
	return d
}

// Execute pulls the next tick from the tick source and evaluates it on the
// named agent. A source failure leaves the agent untouched.
func (o *Orchestrator) Execute(ctx context.Context, name string) (models.Decision, error) {
	e, err := o.lookup(name)
	if err != nil {
		return models.Decision{}, err
	}
	if o.source == nil {
		return models.Decision{}, &ExecutionError{Agent: name, Cause: errors.New("no tick source")}
	}
	tick, err := o.source.Next(ctx)
	if err != nil {
		e.online.Store(false)
		execErr := &ExecutionError{Agent: name, Cause: err}
		o.notify(models.EventError, name, execErr.Error(), nil)
		return models.Decision{}, execErr
	}
	e.online.Store(true)
	return o.evaluate(e, tick), nil
}

func (o *Orchestrator) status(e *entry) models.AgentStatus {
	m := e.agent.Metrics()
	return models.AgentStatus{
		Name:        e.agent.Name(),
		Strategy:    e.agent.Strategy(),
		Online:      e.online.Load(),
		Active:      e.agent.IsActive(),
		TotalTrades: m.TotalTrades,
		NetPnL:      m.NetProfit,
	}
}

func (o *Orchestrator) Status(name string) (models.AgentStatus, error) {
	e, err := o.lookup(name)
	if err != nil {
		return models.AgentStatus{}, err
	}
	return o.status(e), nil
}

// StatusAll returns every agent's status in List order.
func (o *Orchestrator) StatusAll() []models.AgentStatus {
	out := make([]models.AgentStatus, len(o.names))
	o.each(func(i int, e *entry) {
		out[i] = o.status(e)
	})
	return out
}

// SystemStatus aggregates the fleet. Win rate is trade weighted.
func (o *Orchestrator) SystemStatus() models.SystemStatus {
	statuses := o.StatusAll()
	metrics := make([]models.Metrics, len(o.names))
	o.each(func(i int, e *entry) {
		metrics[i] = e.agent.Metrics()
	})

	totals := stats.Aggregate(metrics)
	s := models.SystemStatus{
		TotalAgents: len(statuses),
		TotalTrades: totals.TotalTrades,
		WinRate:     totals.WinRate,
		NetPnL:      totals.NetProfit,
	}
	for _, st := range statuses {
		if st.Active {
			s.ActiveAgents++
		}
		if st.Online {
			s.OnlineAgents++
		}
	}
	return s
}

func (o *Orchestrator) Metrics(name string) (models.Metrics, error) {
	e, err := o.lookup(name)
	if err != nil {
		return models.Metrics{}, err
	}
	return e.agent.Metrics(), nil
}

func (o *Orchestrator) MetricsAll() map[string]models.Metrics {
	all := make([]models.Metrics, len(o.names))
	o.each(func(i int, e *entry) {
		all[i] = e.agent.Metrics()
	})
	out := make(map[string]models.Metrics, len(o.names))
	for i, name := range o.names {
		out[name] = all[i]
	}
	return out
}

func (o *Orchestrator) Ledger(name string) ([]models.LedgerEntry, error) {
	e, err := o.lookup(name)
	if err != nil {
		return nil, err
	}
	return e.agent.Ledger(), nil
}

// Override applies a runtime setting to agents that expose them.
func (o *Orchestrator) Override(name, key, value string) error {
	e, err := o.lookup(name)
	if err != nil {
		return err
	}
	a, ok := e.agent.(interfaces.SupportsAdminOverride)
	if !ok {
		return errors.Wrapf(ErrOverrideUnsupported, "%q", name)
	}
	if err := a.ApplyOverride(key, value); err != nil {
		return errors.Wrapf(err, "override %s on %s", key, name)
	}
	o.notify(models.EventAlert, name, fmt.Sprintf("override %s=%s", key, value), nil)
	return nil
}

// Overrides lists the current runtime settings of an overridable agent.
func (o *Orchestrator) Overrides(name string) (map[string]string, error) {
	e, err := o.lookup(name)
	if err != nil {
		return nil, err
	}
	a, ok := e.agent.(interfaces.SupportsAdminOverride)
	if !ok {
		return nil, errors.Wrapf(ErrOverrideUnsupported, "%q", name)
	}
	return a.Overrides(), nil
}

func (o *Orchestrator) StartAll() []models.BatchResult {
	return o.batch(func(name string) (string, error) {
		return "started", o.Start(name)
	})
}

func (o *Orchestrator) StopAll() []models.BatchResult {
	return o.batch(func(name string) (string, error) {
		return "stopped", o.Stop(name)
	})
}

// ExecuteAll executes every agent once, each on its own tick.
func (o *Orchestrator) ExecuteAll(ctx context.Context) []models.BatchResult {
	return o.batch(func(name string) (string, error) {
		d, err := o.Execute(ctx, name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s", d.Action, d.Reason), nil
	})
}

// batch runs op for every agent concurrently. A failure is recorded against
// its agent and never stops the others.
func (o *Orchestrator) batch(op func(name string) (string, error)) []models.BatchResult {
	results := make([]models.BatchResult, len(o.names))
	var g errgroup.Group
	for i, name := range o.names {
		i, name := i, name
		g.Go(func() error {
			msg, err := op(name)
			results[i] = models.BatchResult{Agent: name, OK: err == nil, Message: msg}
			if err != nil {
				results[i].Message = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// each calls fn for every agent concurrently, i is the agent's List index.
func (o *Orchestrator) each(fn func(i int, e *entry)) {
	var g errgroup.Group
	for i, name := range o.names {
		i, e := i, o.entries[name]
		g.Go(func() error {
			fn(i, e)
			return nil
		})
	}
	_ = g.Wait()
}
