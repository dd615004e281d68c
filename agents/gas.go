package agents

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/ta"
)

type GasOptimizerConfig struct {
	BaseGas         float64 `json:"base_gas" validate:"gte=0"`  // gwei
	GasRange        float64 `json:"gas_range" validate:"gte=0"` // gwei above base
	Window          int     `json:"window" validate:"gt=0"`
	MaxGasPrice     float64 `json:"max_gas_price" validate:"gt=0"`
	FavourableRatio float64 `json:"favourable_ratio" validate:"gt=0"` // of the rolling average
	BatchSize       int     `json:"batch_size" validate:"gt=0"`
	NewTxAbove      float64 `json:"new_tx_above" validate:"gte=0,lte=1"`
	DefaultAverage  float64 `json:"default_average" validate:"gt=0"`
}

func DefaultGasOptimizerConfig() GasOptimizerConfig {
	return GasOptimizerConfig{
		BaseGas:         20,
		GasRange:        60,
		Window:          100,
		MaxGasPrice:     50,
		FavourableRatio: 0.8,
		BatchSize:       5,
		NewTxAbove:      0.7,
		DefaultAverage:  30,
	}
}

var (
	txTypes      = []string{"swap", "transfer", "stake", "unstake"}
	txPriorities = []string{"low", "medium", "high"}
)

type pendingTx struct {
	id          string
	kind        string
	gasEstimate float64
	priority    string
}

// GasOptimizer queues simulated transactions and sends them in batches when
// gas is cheap against its rolling average.
type GasOptimizer struct {
	*core
	cfg      GasOptimizerConfig
	history  *ta.Window
	pending  []pendingTx
	gasSaved float64
}

func NewGasOptimizer(cfg GasOptimizerConfig, opts ...Option) *GasOptimizer {
	return &GasOptimizer{
		core:    newCore(GasOptimizerName, opts),
		cfg:     cfg,
		history: ta.NewWindow(cfg.Window),
	}
}

func (g *GasOptimizer) Evaluate(tick models.MarketTick) models.Decision {
	return g.evaluate(tick, g.decide)
}

func (g *GasOptimizer) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *GasOptimizer) average() float64 {
	if g.history.Len() == 0 {
		return g.cfg.DefaultAverage
	}
	return g.history.Mean()
}

func (g *GasOptimizer) favourable(gas float64) bool {
	return gas < g.average()*g.cfg.FavourableRatio || gas < g.cfg.MaxGasPrice*0.5
}

func (g *GasOptimizer) queue() {
	g.pending = append(g.pending, pendingTx{
		id:          "tx_" + uuid.NewString(),
		kind:        txTypes[pick(g.draw(), len(txTypes))],
		gasEstimate: float64(int(g.draw()*100000) + 21000),
		priority:    txPriorities[pick(g.draw(), len(txPriorities))],
	})
}

func (g *GasOptimizer) decide(tick models.MarketTick) models.Decision {
	gas := g.cfg.BaseGas + g.draw()*g.cfg.GasRange
	g.history.Push(gas)

	if g.draw() > g.cfg.NewTxAbove {
		g.queue()
	}

	if len(g.pending) == 0 || !g.favourable(gas) {
		return models.HoldAt(gas, fmt.Sprintf("Gas: %.1f gwei. Pending: %d txs. Saved: $%.2f", gas, len(g.pending), g.gasSaved))
	}

	size := g.cfg.BatchSize
	if size <= 0 || size > len(g.pending) {
		size = len(g.pending)
	}
	batch := g.pending[:size]
	g.pending = append([]pendingTx(nil), g.pending[size:]...)

	var totalGas float64
	ids := make([]string, 0, len(batch))
	for _, tx := range batch {
		totalGas += tx.gasEstimate
		ids = append(ids, tx.id)
	}
	avg := g.average()
	saved := (avg - gas) * totalGas / 1e9 * tick.Price
	if saved > 0 {
		g.gasSaved += saved
	}

	return models.Decision{
		Action:     models.Buy,
		Amount:     float64(size),
		Price:      gas,
		Reason:     fmt.Sprintf("Batched %d txs at %.1f gwei (avg: %.1f)", size, gas, avg),
		ProfitLoss: saved,
		Metadata: map[string]interface{}{
			"batchSize":     size,
			"gasPrice":      gas,
			"avgGasPrice":   avg,
			"totalGasSaved": g.gasSaved,
			"transactions":  ids,
		},
	}
}
