package sena

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/tantralabs/sena/export"
	"github.com/tantralabs/sena/ledger"
	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/stats"
)

// LogMetrics writes every agent's metrics and the system totals to the log.
func (o *Orchestrator) LogMetrics() {
	all := o.MetricsAll()
	for _, name := range o.names {
		logger.Infof("%s: %s", name, stats.KeyValues(all[name]))
	}
	s := o.SystemStatus()
	logger.Infof("System: agents=%d active=%d trades=%d winRate=%.2f netPnL=%.2f",
		s.TotalAgents, s.ActiveAgents, s.TotalTrades, s.WinRate, s.NetPnL)
}

// PublishPerformance sends a performance event per agent.
func (o *Orchestrator) PublishPerformance() {
	all := o.MetricsAll()
	for _, name := range o.names {
		o.notify(models.EventPerformance, name, stats.KeyValues(all[name]), nil)
	}
}

// Reports collects each agent's metrics and full ledger.
func (o *Orchestrator) Reports() []export.AgentReport {
	reports := make([]export.AgentReport, len(o.names))
	o.each(func(i int, e *entry) {
		trades := e.agent.Ledger()
		reports[i] = export.AgentReport{
			Agent:    e.agent.Name(),
			Strategy: e.agent.Strategy(),
			Metrics:  stats.Compute(trades),
			Trades:   trades,
		}
	})
	return reports
}

// SaveLedgers writes one <agent>.csv per agent with trades into dir.
func (o *Orchestrator) SaveLedgers(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	var files []string
	for _, r := range o.Reports() {
		if len(r.Trades) == 0 {
			continue
		}
		fileName := filepath.Join(dir, r.Agent+".csv")
		if err := ledger.SaveCSV(r.Trades, fileName); err != nil {
			return files, errors.Wrapf(err, "save %s", fileName)
		}
		files = append(files, fileName)
	}
	return files, nil
}

// Writer is satisfied by export.Influx.
type Writer interface {
	Write(reports []export.AgentReport, at time.Time) error
}

// Publish sends every agent report to w.
func (o *Orchestrator) Publish(w Writer) error {
	if err := w.Write(o.Reports(), o.now()); err != nil {
		return errors.Wrap(err, "publish reports")
	}
	return nil
}
