package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/settings"
)

func TestDSN(t *testing.T) {
	cfg := settings.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", DSN(cfg))
	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestToRecords(t *testing.T) {
	at := time.UnixMilli(1700000000123).UTC()
	records := ToRecords([]models.LedgerEntry{{
		ID:        "grid_1",
		AgentID:   "grid",
		Strategy:  "Grid Trading",
		Action:    models.Buy,
		Amount:    0.5,
		Price:     100,
		Profit:    -1,
		Reason:    "level",
		Timestamp: at,
	}})
	require.Len(t, records, 1)
	assert.Equal(t, LedgerRecord{
		ID: "grid_1", Agent: "grid", Strategy: "Grid Trading", Action: "buy",
		Amount: 0.5, Price: 100, Profit: -1, Reason: "level", Timestamp: 1700000000123,
	}, records[0])
}

func TestMergeCandles(t *testing.T) {
	local := []models.Candle{{Timestamp: 3, Close: 3}, {Timestamp: 1, Close: 1}}
	fresh := []models.Candle{{Timestamp: 2, Close: 2}, {Timestamp: 3, Close: 30}}
	merged := MergeCandles(local, fresh)
	require.Len(t, merged, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{merged[0].Timestamp, merged[1].Timestamp, merged[2].Timestamp})
	// local wins on duplicates
	assert.Equal(t, 3.0, merged[2].Close)
}

// Needs a database with a candles table, e.g. SENA_DB_HOST=localhost.
func TestLoadCandlesIntegration(t *testing.T) {
	if os.Getenv("SENA_DB_HOST") == "" {
		t.Skip("SENA_DB_HOST not set")
	}
	cfg, err := settings.Load(context.Background(), "")
	require.NoError(t, err)

	db, err := Connect(context.Background(), cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	end := time.Now()
	candles, err := LoadCandles(context.Background(), db, cfg.Symbol, end.Add(-24*time.Hour), end)
	if err != nil {
		t.Skip(err)
	}
	for i := 1; i < len(candles); i++ {
		assert.Less(t, candles[i-1].Timestamp, candles[i].Timestamp)
	}
}
