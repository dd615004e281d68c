// Package database reads recorded candles from and writes agent ledgers to
// a postgres database.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/settings"
)

const (
	selectCandles = "select symbol, timestamp, open, high, low, close, volume from candles where symbol = $1 and timestamp >= $2 and timestamp <= $3 order by timestamp"
	insertEntry   = "insert into agent_ledger(id, agent, strategy, action, amount, price, profit, reason, timestamp) values (:id, :agent, :strategy, :action, :amount, :price, :profit, :reason, :timestamp) on conflict do nothing"
)

// DSN builds a lib/pq connection string.
func DSN(cfg settings.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode)
}

func Connect(ctx context.Context, cfg settings.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout.Duration)
		defer cancel()
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s:%d", cfg.Host, cfg.Port)
	}
	return db, nil
}

// LoadCandles fetches the candles of symbol between start and end inclusive.
func LoadCandles(ctx context.Context, db *sqlx.DB, symbol string, start, end time.Time) ([]models.Candle, error) {
	candles := []models.Candle{}
	err := db.SelectContext(ctx, &candles, selectCandles, symbol, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, errors.Wrap(err, "select candles")
	}
	if len(candles) == 0 {
		return nil, errors.Errorf("no candles for %s between %s and %s", symbol, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return MergeCandles(nil, candles), nil
}

// SaveLedger inserts entries in a single transaction. Entries already stored
// are skipped.
func SaveLedger(ctx context.Context, db *sqlx.DB, entries []models.LedgerEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warnf("Rollback failed: %v", rbErr)
			}
		}
	}()

	for _, r := range ToRecords(entries) {
		if _, err = tx.NamedExecContext(ctx, insertEntry, r); err != nil {
			return errors.Wrapf(err, "insert %s", r.ID)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	logger.Infof("Saved %d ledger entries", len(entries))
	return nil
}
