// Package clock drives the game engine's periodic effects. All game
// logic lives in the engine; the clock only decides when to call it.
package clock

import (
	"context"
	"log/slog"
	"time"

	"wondesk/internal/game"
)

type Clock struct {
	engine       *game.Engine
	log          *slog.Logger
	accrualEvery time.Duration
	simEvery     time.Duration
}

func New(engine *game.Engine, logger *slog.Logger, accrualEvery, simEvery time.Duration) *Clock {
	if logger == nil {
		logger = slog.Default()
	}
	if accrualEvery <= 0 {
		accrualEvery = time.Second
	}
	if simEvery <= 0 {
		simEvery = time.Second
	}
	return &Clock{
		engine:       engine,
		log:          logger,
		accrualEvery: accrualEvery,
		simEvery:     simEvery,
	}
}

// Run fires the two periodic effects until the context is cancelled:
// passive accrual (always on, no-op while the auto-click rate is zero)
// and the simulation tick (no-op while the game is paused). Cancellation
// stops both tickers before returning, so nothing mutates the engine
// after Run exits.
func (c *Clock) Run(ctx context.Context) {
	accrual := time.NewTicker(c.accrualEvery)
	defer accrual.Stop()
	sim := time.NewTicker(c.simEvery)
	defer sim.Stop()

	c.log.Info("game clock started", "accrual_every", c.accrualEvery.String(), "sim_every", c.simEvery.String())
	for {
		select {
		case <-ctx.Done():
			c.log.Info("game clock stopped")
			return
		case <-accrual.C:
			c.engine.ClickerTick()
		case <-sim.C:
			if c.engine.SimTick() {
				c.log.Debug("portfolio revalued")
			}
		}
	}
}
