package game

import (
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"

	"wondesk/internal/market"
)

// Engine owns the combined portfolio + clicker state. Every operation is
// a run-to-completion critical section under one mutex, so handlers and
// clock ticks never observe a half-applied transition. Failed operations
// return a sentinel error and mutate nothing.
type Engine struct {
	mu      sync.Mutex
	board   *market.Board
	rng     *mathrand.Rand
	log     *slog.Logger
	version uint64

	portfolio PortfolioState
	clicker   ClickerState
}

func NewEngine(board *market.Board, rng *mathrand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		board:     board,
		rng:       rng,
		log:       logger,
		portfolio: defaultPortfolio(),
		clicker:   defaultClicker(),
	}
}

// Click adds the current click power to the coin balance and mirrors the
// same amount into portfolio cash. Returns the amount earned.
func (e *Engine) Click() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	earned := e.clicker.ClickPower
	e.addCoinsLocked(earned)
	e.version++
	return earned
}

// ClickerTick applies one second of passive accrual. It runs regardless
// of the portfolio's running flag and is a no-op while the auto-click
// rate is zero. Returns the amount accrued.
func (e *Engine) ClickerTick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	rate := e.clicker.AutoClickRate
	if rate <= 0 {
		return 0
	}
	e.addCoinsLocked(rate)
	e.version++
	return rate
}

// addCoinsLocked is the currency bridge: every coin produced by the
// clicker lands 1:1 in portfolio cash. There is no inverse flow.
func (e *Engine) addCoinsLocked(amount int64) {
	e.clicker.Coins += amount
	e.portfolio.CashMicros += amount * market.MicrosPerWon
}

// Buy purchases quantityUnits of an asset at its live board price.
func (e *Engine) Buy(assetID string, quantityUnits int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantityUnits <= 0 {
		return ErrInvalidQuantity
	}
	quote, ok := e.board.Get(assetID)
	if !ok {
		return ErrUnknownAsset
	}
	if quote.Type == market.AssetStock && quantityUnits%UnitScale != 0 {
		return ErrWholeSharesOnly
	}
	cost, err := notionalMicros(quote.PriceMicros, quantityUnits)
	if err != nil {
		return ErrInvalidQuantity
	}
	if cost > e.portfolio.CashMicros {
		return ErrInsufficientFunds
	}

	if h := e.holdingLocked(assetID); h != nil {
		newQty := h.QuantityUnits + quantityUnits
		total, err := notionalMicros(quote.PriceMicros, newQty)
		if err != nil {
			return ErrInvalidQuantity
		}
		e.portfolio.CashMicros -= cost
		h.QuantityUnits = newQty
		h.PriceMicros = quote.PriceMicros
		h.TotalValueMicros = total
	} else {
		e.portfolio.CashMicros -= cost
		e.portfolio.Holdings = append(e.portfolio.Holdings, Holding{
			AssetID:          quote.ID,
			Code:             quote.Code,
			Name:             quote.Name,
			PriceMicros:      quote.PriceMicros,
			QuantityUnits:    quantityUnits,
			TotalValueMicros: cost,
			Type:             quote.Type,
		})
	}
	e.version++
	return nil
}

// Sell disposes quantityUnits of a holding at its cached mark. Selling a
// position down to exactly zero removes the holding.
func (e *Engine) Sell(assetID string, quantityUnits int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantityUnits <= 0 {
		return ErrInvalidQuantity
	}
	h := e.holdingLocked(assetID)
	if h == nil {
		return ErrUnknownAsset
	}
	if quantityUnits > h.QuantityUnits {
		return ErrInsufficientHoldings
	}
	proceeds, err := notionalMicros(h.PriceMicros, quantityUnits)
	if err != nil {
		return ErrInvalidQuantity
	}

	e.portfolio.CashMicros += proceeds
	if quantityUnits == h.QuantityUnits {
		e.removeHoldingLocked(assetID)
	} else {
		h.QuantityUnits -= quantityUnits
		h.TotalValueMicros = mustNotional(h.PriceMicros, h.QuantityUnits)
	}
	e.version++
	return nil
}

// BuyUpgrade spends coins on one level of an upgrade. Coins spent here
// never touch portfolio cash.
func (e *Engine) BuyUpgrade(upgradeID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var up *Upgrade
	for i := range e.clicker.Upgrades {
		if e.clicker.Upgrades[i].ID == upgradeID {
			up = &e.clicker.Upgrades[i]
			break
		}
	}
	if up == nil {
		return ErrUnknownUpgrade
	}
	cost := UpgradeCost(up.BaseCost, up.Level)
	if e.clicker.Coins < cost {
		return ErrInsufficientFunds
	}

	e.clicker.Coins -= cost
	up.Level++
	if upgradeBoostsClick(up.ID) {
		e.clicker.ClickPower += up.Power
	} else {
		e.clicker.AutoClickRate += up.Power
	}
	e.version++
	return nil
}

// SetRunning flips the simulation between Stopped and Running. Only the
// simulation tick is gated by this; clicking and passive accrual are not.
func (e *Engine) SetRunning(running bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.portfolio.Running == running {
		return
	}
	e.portfolio.Running = running
	e.version++
}

// SimTick advances elapsed game time by one second while running, and
// revalues the portfolio on every fifth second. Returns whether a
// revaluation happened.
func (e *Engine) SimTick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.portfolio.Running {
		return false
	}
	e.portfolio.GameTime++
	e.version++
	if e.portfolio.GameTime%5 != 0 {
		return false
	}
	e.revalueLocked()
	return true
}

func (e *Engine) revalueLocked() {
	for i := range e.portfolio.Holdings {
		h := &e.portfolio.Holdings[i]
		h.PriceMicros = market.Simulate(e.rng, h.PriceMicros, h.Type)
		h.TotalValueMicros = mustNotional(h.PriceMicros, h.QuantityUnits)
	}
}

// Reset restores both aggregates to their initial values together.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.portfolio = defaultPortfolio()
	e.clicker = defaultClicker()
	e.version++
	e.log.Info("game state reset")
}

func (e *Engine) State() StateView {
	e.mu.Lock()
	defer e.mu.Unlock()

	var holdings int64
	for _, h := range e.portfolio.Holdings {
		holdings += h.TotalValueMicros
	}
	return StateView{
		Portfolio:        clonePortfolio(e.portfolio),
		Clicker:          cloneClicker(e.clicker),
		TotalValueMicros: e.portfolio.CashMicros + holdings,
		HoldingsMicros:   holdings,
	}
}

// TotalValueMicros is cash plus the marked value of every holding.
func (e *Engine) TotalValueMicros() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.portfolio.CashMicros
	for _, h := range e.portfolio.Holdings {
		total += h.TotalValueMicros
	}
	return total
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Portfolio: clonePortfolio(e.portfolio),
		Clicker:   cloneClicker(e.clicker),
	}
}

// Restore replaces both aggregates from a persisted snapshot, repairing
// anything a stale snapshot may carry: zero-quantity holdings are
// dropped, derived totals recomputed, and missing upgrades re-seeded.
func (e *Engine) Restore(snap Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := clonePortfolio(snap.Portfolio)
	kept := p.Holdings[:0]
	for _, h := range p.Holdings {
		if h.QuantityUnits <= 0 {
			continue
		}
		h.TotalValueMicros = mustNotional(h.PriceMicros, h.QuantityUnits)
		kept = append(kept, h)
	}
	p.Holdings = kept
	if p.CashMicros < 0 {
		p.CashMicros = 0
	}

	c := cloneClicker(snap.Clicker)
	if c.ClickPower < StarterClickPower {
		c.ClickPower = StarterClickPower
	}
	if len(c.Upgrades) == 0 {
		c.Upgrades = defaultUpgrades()
	} else {
		byID := make(map[int64]bool, len(c.Upgrades))
		for _, u := range c.Upgrades {
			byID[u.ID] = true
		}
		for _, u := range defaultUpgrades() {
			if !byID[u.ID] {
				c.Upgrades = append(c.Upgrades, u)
			}
		}
	}

	e.portfolio = p
	e.clicker = c
	e.version++
	e.log.Info("game state restored", "holdings", len(p.Holdings), "game_time", p.GameTime)
}

// Version increments on every successful mutation; the snapshot saver
// uses it to skip idle periods.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

func (e *Engine) holdingLocked(assetID string) *Holding {
	for i := range e.portfolio.Holdings {
		if e.portfolio.Holdings[i].AssetID == assetID {
			return &e.portfolio.Holdings[i]
		}
	}
	return nil
}

func (e *Engine) removeHoldingLocked(assetID string) {
	for i := range e.portfolio.Holdings {
		if e.portfolio.Holdings[i].AssetID == assetID {
			e.portfolio.Holdings = append(e.portfolio.Holdings[:i], e.portfolio.Holdings[i+1:]...)
			return
		}
	}
}

// mustNotional is for recomputing totals of quantities that already
// passed the buy-side overflow check.
func mustNotional(priceMicros, quantityUnits int64) int64 {
	v, err := notionalMicros(priceMicros, quantityUnits)
	if err != nil {
		return 0
	}
	return v
}

func clonePortfolio(p PortfolioState) PortfolioState {
	out := p
	out.Holdings = make([]Holding, len(p.Holdings))
	copy(out.Holdings, p.Holdings)
	return out
}

func cloneClicker(c ClickerState) ClickerState {
	out := c
	out.Upgrades = make([]Upgrade, len(c.Upgrades))
	copy(out.Upgrades, c.Upgrades)
	return out
}
