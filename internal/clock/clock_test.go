package clock

import (
	"context"
	mathrand "math/rand"
	"testing"
	"time"

	"wondesk/internal/game"
	"wondesk/internal/market"
)

func newTestEngine() *game.Engine {
	board := market.NewBoard(market.NewCatalog(), mathrand.New(mathrand.NewSource(1)))
	return game.NewEngine(board, mathrand.New(mathrand.NewSource(2)), nil)
}

func TestRunAdvancesGameTime(t *testing.T) {
	engine := newTestEngine()
	engine.SetRunning(true)

	c := New(engine, nil, time.Hour, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for engine.State().Portfolio.GameTime < 5 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("game time never reached 5, got %d", engine.State().Portfolio.GameTime)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop on cancellation")
	}
}

func TestRunRespectsPause(t *testing.T) {
	engine := newTestEngine()

	c := New(engine, nil, 0, 0)
	if c.accrualEvery != time.Second || c.simEvery != time.Second {
		t.Fatalf("zero intervals not defaulted: %v %v", c.accrualEvery, c.simEvery)
	}

	paused := New(engine, nil, time.Hour, 2*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	paused.Run(ctx)

	if got := engine.State().Portfolio.GameTime; got != 0 {
		t.Fatalf("paused game advanced to t=%d", got)
	}
}
