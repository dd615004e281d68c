package sena

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tantralabs/sena/data"
	"github.com/tantralabs/sena/logger"
)

// Run feeds ticks from the tick source to every active agent until ticks
// ticks were processed (0 means no limit), the source is exhausted, or ctx
// is done. Agents evaluate each tick concurrently. It returns how many ticks
// were processed; exhaustion is not an error.
func (o *Orchestrator) Run(ctx context.Context, ticks int) (int, error) {
	if o.source == nil {
		return 0, errors.New("no tick source")
	}
	processed := 0
	for ticks <= 0 || processed < ticks {
		tick, err := o.source.Next(ctx)
		if errors.Is(err, data.ErrExhausted) {
			logger.Infof("Tick source exhausted after %d ticks", processed)
			return processed, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return processed, ctx.Err()
			}
			return processed, errors.Wrap(err, "next tick")
		}

		var g errgroup.Group
		for _, name := range o.names {
			e := o.entries[name]
			if !e.agent.IsActive() {
				continue
			}
			g.Go(func() error {
				o.evaluate(e, tick)
				return nil
			})
		}
		_ = g.Wait()
		processed++

		if processed%1000 == 0 {
			logger.Debugf("Processed %d ticks, last price %.2f", processed, tick.Price)
		}
	}
	return processed, nil
}
