package sena

import (
	"math/rand"
	"time"

	"github.com/tantralabs/sena/agents"
	"github.com/tantralabs/sena/data"
	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/settings"
)

// BuildAgents creates the fourteen agents from cfg. Each gets its own random
// source derived from seed, so a seed reproduces the whole fleet.
func BuildAgents(cfg settings.AgentsConfig, seed int64) []interfaces.Agent {
	master := rand.New(rand.NewSource(seed))
	r := func() agents.Option {
		return agents.WithRand(agents.NewRand(master.Int63()))
	}
	return []interfaces.Agent{
		agents.NewGrid(cfg.Grid, r()),
		agents.NewDCA(cfg.DCA, r()),
		agents.NewArbitrage(cfg.Arbitrage, r()),
		agents.NewScalping(cfg.Scalping, r()),
		agents.NewMarketMaking(cfg.MarketMaking, r()),
		agents.NewMomentum(cfg.Momentum, r()),
		agents.NewMEV(cfg.MEV, r()),
		agents.NewAMM(cfg.AMM, r()),
		agents.NewLiquidity(cfg.Liquidity, r()),
		agents.NewDeFi(cfg.DeFi, r()),
		agents.NewBridge(cfg.Bridge, r()),
		agents.NewLending(cfg.Lending, r()),
		agents.NewGasOptimizer(cfg.GasOptimizer, r()),
		agents.NewMining(cfg.Mining, r()),
	}
}

// NewSimulator builds the random walk tick source described by cfg.
func NewSimulator(cfg settings.Config, seed int64) *data.Simulator {
	return data.NewSimulator(data.SimulatorConfig{
		Symbol:     cfg.Symbol,
		StartPrice: cfg.Simulator.StartPrice,
		Volatility: cfg.Simulator.Volatility,
		HalfSpread: cfg.Simulator.HalfSpread,
		BaseVolume: cfg.Simulator.BaseVolume,
		Step:       cfg.Simulator.Step.Duration,
	}, seed)
}

// NewFleet builds the full orchestrator from cfg, ticking from a simulator
// unless opts supply another source. A zero Seed seeds from the clock.
func NewFleet(cfg settings.Config, opts ...Option) (*Orchestrator, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Infof("Building fleet for %s with seed %d", cfg.Symbol, seed)
	sim := NewSimulator(cfg, seed)
	if grid := cfg.Agents.Grid; grid.Levels > 0 {
		step := grid.RangePercent / float64(grid.Levels)
		logger.Infof("Simulated price stays within one grid step (%.2f%%) with probability %.2f", step, sim.ReturnProbability(step))
	}
	opts = append([]Option{WithTickSource(sim)}, opts...)
	return New(BuildAgents(cfg.Agents, seed), opts...)
}
