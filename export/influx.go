// Package export ships agent metrics and trades to influxdb.
package export

import (
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/pkg/errors"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/settings"
	"github.com/tantralabs/sena/stats"
)

const tradesMeasurement = "agent_trades"

type Influx struct {
	client      client.Client
	database    string
	measurement string
}

func NewInflux(cfg settings.InfluxConfig) (*Influx, error) {
	if cfg.URL == "" {
		return nil, errors.New("influx url is not set")
	}
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout.Duration,
	})
	if err != nil {
		return nil, errors.Wrap(err, "influx client")
	}
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = "agent_metrics"
	}
	return &Influx{client: c, database: cfg.Database, measurement: measurement}, nil
}

// AgentReport is one agent's metrics and the ledger entries to export with
// them.
type AgentReport struct {
	Agent    string
	Strategy string
	Metrics  models.Metrics
	Trades   []models.LedgerEntry
}

// Write sends every report as one batch.
func (i *Influx) Write(reports []AgentReport, at time.Time) error {
	bp, err := BuildBatch(i.database, i.measurement, reports, at)
	if err != nil {
		return err
	}
	if err := i.client.Write(bp); err != nil {
		return errors.Wrap(err, "influx write")
	}
	return nil
}

func (i *Influx) Close() error {
	return i.client.Close()
}

// BuildBatch turns reports into points: one metrics point per agent at time
// at, and one trade point per ledger entry at the entry's own time.
func BuildBatch(database, measurement string, reports []AgentReport, at time.Time) (client.BatchPoints, error) {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  database,
		Precision: "us",
	})
	if err != nil {
		return nil, errors.Wrap(err, "batch points")
	}

	for _, r := range reports {
		tags := map[string]string{"agent": r.Agent, "strategy": r.Strategy}
		pt, err := client.NewPoint(measurement, tags, stats.Fields(r.Metrics), at)
		if err != nil {
			return nil, errors.Wrapf(err, "metrics point for %s", r.Agent)
		}
		bp.AddPoint(pt)

		for _, e := range r.Trades {
			tradeTags := map[string]string{"agent": r.Agent, "strategy": r.Strategy, "side": string(e.Action)}
			fields := map[string]interface{}{
				"amount": e.Amount,
				"price":  e.Price,
				"profit": e.Profit,
				"reason": e.Reason,
			}
			pt, err := client.NewPoint(tradesMeasurement, tradeTags, fields, e.Timestamp)
			if err != nil {
				return nil, errors.Wrapf(err, "trade point %s", e.ID)
			}
			bp.AddPoint(pt)
		}
	}
	return bp, nil
}
