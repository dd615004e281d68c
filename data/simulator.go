package data

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chobie/go-gaussian"

	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/utils"
)

// Uniform supplies values in [0, 1).
type Uniform interface {
	Float64() float64
}

type SimulatorConfig struct {
	Symbol     string
	StartPrice float64
	Volatility float64 // standard deviation of the per tick log return
	HalfSpread float64
	BaseVolume float64
	Step       time.Duration
	Start      time.Time
}

// Simulator generates a geometric random walk. Returns are drawn from a
// normal distribution by inverting its cdf at a uniform draw, so a scripted
// Uniform gives a fully reproducible path.
type Simulator struct {
	mu    sync.Mutex
	cfg   SimulatorConfig
	rng   Uniform
	norm  *gaussian.Gaussian
	price float64
	at    time.Time
}

func NewSimulator(cfg SimulatorConfig, seed int64) *Simulator {
	return NewSimulatorWith(cfg, rand.New(rand.NewSource(seed)))
}

func NewSimulatorWith(cfg SimulatorConfig, rng Uniform) *Simulator {
	if cfg.Step <= 0 {
		cfg.Step = time.Minute
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	s := &Simulator{
		cfg:   cfg,
		rng:   rng,
		price: cfg.StartPrice,
		at:    cfg.Start,
	}
	// go-gaussian panics on a non-positive variance; a flat walk needs no
	// distribution.
	if cfg.Volatility > 0 {
		s.norm = gaussian.NewGaussian(0, cfg.Volatility*cfg.Volatility)
	}
	return s
}

const (
	minUniform = 1e-9
	maxUniform = 1 - 1e-9
)

// Next never runs dry, it only stops when ctx is done.
func (s *Simulator) Next(ctx context.Context) (models.MarketTick, error) {
	if err := ctx.Err(); err != nil {
		return models.MarketTick{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.norm != nil {
		u := utils.Clamp(s.rng.Float64(), minUniform, maxUniform)
		s.price *= math.Exp(s.norm.Ppf(u))
	}
	volume := s.cfg.BaseVolume * (0.5 + s.rng.Float64())

	tick := models.MarketTick{
		Symbol:    s.cfg.Symbol,
		Price:     s.price,
		Volume:    volume,
		BidPrice:  s.price * (1 - s.cfg.HalfSpread),
		AskPrice:  s.price * (1 + s.cfg.HalfSpread),
		Timestamp: s.at,
	}
	s.at = s.at.Add(s.cfg.Step)
	return tick, nil
}

// ReturnProbability is the chance a single step moves the price by at most
// pct percent, useful for sizing grid ranges against the configured volatility.
func (s *Simulator) ReturnProbability(pct float64) float64 {
	if s.norm == nil {
		return 1
	}
	x := math.Log(1 + pct/100)
	return s.norm.Cdf(x) - s.norm.Cdf(-x)
}
