package game

import (
	mathrand "math/rand"
	"testing"

	"wondesk/internal/market"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	board := market.NewBoard(market.NewCatalog(), mathrand.New(mathrand.NewSource(7)))
	return NewEngine(board, mathrand.New(mathrand.NewSource(11)), nil)
}

func TestBuyDeductsCash(t *testing.T) {
	e := newTestEngine(t)

	// 10 whole shares at the catalog seed price of 55,500 won.
	if err := e.Buy("samsung", 10*UnitScale); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	state := e.State()
	wantCash := StarterCashMicros - 555_000*market.MicrosPerWon
	if state.Portfolio.CashMicros != wantCash {
		t.Fatalf("cash got=%d want=%d", state.Portfolio.CashMicros, wantCash)
	}
	if len(state.Portfolio.Holdings) != 1 {
		t.Fatalf("holdings got=%d want=1", len(state.Portfolio.Holdings))
	}
	h := state.Portfolio.Holdings[0]
	if h.QuantityUnits != 10*UnitScale {
		t.Fatalf("quantity got=%d want=%d", h.QuantityUnits, 10*UnitScale)
	}
	if h.TotalValueMicros != 555_000*market.MicrosPerWon {
		t.Fatalf("holding value got=%d want=%d", h.TotalValueMicros, 555_000*market.MicrosPerWon)
	}
	if state.TotalValueMicros != StarterCashMicros {
		t.Fatalf("total value got=%d want=%d", state.TotalValueMicros, StarterCashMicros)
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Buy("samsung", 10*UnitScale); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if err := e.Sell("samsung", 10*UnitScale); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	state := e.State()
	if state.Portfolio.CashMicros != StarterCashMicros {
		t.Fatalf("cash got=%d want=%d", state.Portfolio.CashMicros, StarterCashMicros)
	}
	if len(state.Portfolio.Holdings) != 0 {
		t.Fatalf("expected position removed, got %d holdings", len(state.Portfolio.Holdings))
	}
}

func TestBuyRejectsFractionalStock(t *testing.T) {
	e := newTestEngine(t)
	before := e.State()

	err := e.Buy("samsung", UnitScale+UnitScale/2)
	if err != ErrWholeSharesOnly {
		t.Fatalf("got err=%v want=%v", err, ErrWholeSharesOnly)
	}

	after := e.State()
	if after.Portfolio.CashMicros != before.Portfolio.CashMicros || len(after.Portfolio.Holdings) != 0 {
		t.Fatalf("failed buy mutated state")
	}
}

func TestBuyAllowsFractionalCrypto(t *testing.T) {
	e := newTestEngine(t)

	// 2.5 ADA at 550 won = 1,375 won.
	if err := e.Buy("cardano", 25*UnitScale/10); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	state := e.State()
	wantCash := StarterCashMicros - 1_375*market.MicrosPerWon
	if state.Portfolio.CashMicros != wantCash {
		t.Fatalf("cash got=%d want=%d", state.Portfolio.CashMicros, wantCash)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	e := newTestEngine(t)
	before := e.State()

	// 10M won of starter cash cannot cover one bitcoin at 45M won.
	err := e.Buy("bitcoin", UnitScale)
	if err != ErrInsufficientFunds {
		t.Fatalf("got err=%v want=%v", err, ErrInsufficientFunds)
	}

	after := e.State()
	if after.Portfolio.CashMicros != before.Portfolio.CashMicros || len(after.Portfolio.Holdings) != 0 {
		t.Fatalf("failed buy mutated state")
	}
	if after.Portfolio.CashMicros < 0 {
		t.Fatalf("cash went negative: %d", after.Portfolio.CashMicros)
	}
}

func TestBuyUnknownAsset(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Buy("enron", UnitScale); err != ErrUnknownAsset {
		t.Fatalf("got err=%v want=%v", err, ErrUnknownAsset)
	}
}

func TestSellMoreThanHeld(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Buy("samsung", 10*UnitScale); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	before := e.State()

	err := e.Sell("samsung", 11*UnitScale)
	if err != ErrInsufficientHoldings {
		t.Fatalf("got err=%v want=%v", err, ErrInsufficientHoldings)
	}

	after := e.State()
	if after.Portfolio.CashMicros != before.Portfolio.CashMicros {
		t.Fatalf("failed sell mutated cash")
	}
	if after.Portfolio.Holdings[0].QuantityUnits != 10*UnitScale {
		t.Fatalf("failed sell mutated quantity")
	}
}

func TestPartialSellKeepsInvariant(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Buy("samsung", 10*UnitScale); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if err := e.Sell("samsung", 4*UnitScale); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	h := e.State().Portfolio.Holdings[0]
	if h.QuantityUnits != 6*UnitScale {
		t.Fatalf("quantity got=%d want=%d", h.QuantityUnits, 6*UnitScale)
	}
	want := mustNotional(h.PriceMicros, h.QuantityUnits)
	if h.TotalValueMicros != want {
		t.Fatalf("holding value got=%d want=%d", h.TotalValueMicros, want)
	}
}

func TestClickBridgesIntoCash(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 3; i++ {
		if earned := e.Click(); earned != StarterClickPower {
			t.Fatalf("click earned=%d want=%d", earned, StarterClickPower)
		}
	}

	state := e.State()
	if state.Clicker.Coins != 3 {
		t.Fatalf("coins got=%d want=3", state.Clicker.Coins)
	}
	wantCash := StarterCashMicros + 3*market.MicrosPerWon
	if state.Portfolio.CashMicros != wantCash {
		t.Fatalf("cash got=%d want=%d", state.Portfolio.CashMicros, wantCash)
	}
}

func TestClickerTickWithoutAutoRate(t *testing.T) {
	e := newTestEngine(t)
	if accrued := e.ClickerTick(); accrued != 0 {
		t.Fatalf("accrued=%d want=0", accrued)
	}
	state := e.State()
	if state.Clicker.Coins != 0 || state.Portfolio.CashMicros != StarterCashMicros {
		t.Fatalf("tick with zero rate mutated state")
	}
}

func TestClickerTickAccruesWhilePaused(t *testing.T) {
	e := newTestEngine(t)

	// Earn enough coins for the first auto upgrade, then buy it.
	for i := 0; i < 50; i++ {
		e.Click()
	}
	if err := e.BuyUpgrade(2); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}

	before := e.State()
	if before.Portfolio.Running {
		t.Fatalf("expected new game to start paused")
	}
	if before.Clicker.AutoClickRate != 1 {
		t.Fatalf("auto rate got=%d want=1", before.Clicker.AutoClickRate)
	}

	if accrued := e.ClickerTick(); accrued != 1 {
		t.Fatalf("accrued=%d want=1", accrued)
	}
	after := e.State()
	if after.Clicker.Coins != before.Clicker.Coins+1 {
		t.Fatalf("coins got=%d want=%d", after.Clicker.Coins, before.Clicker.Coins+1)
	}
	if after.Portfolio.CashMicros != before.Portfolio.CashMicros+market.MicrosPerWon {
		t.Fatalf("accrual did not bridge into cash")
	}
}

func TestBuyUpgradeCostsRise(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 30; i++ {
		e.Click()
	}

	// First level of upgrade 1 costs 10 coins, the next costs 15.
	if err := e.BuyUpgrade(1); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}
	state := e.State()
	if state.Clicker.Coins != 20 {
		t.Fatalf("coins got=%d want=20", state.Clicker.Coins)
	}
	if state.Clicker.ClickPower != StarterClickPower+1 {
		t.Fatalf("click power got=%d want=%d", state.Clicker.ClickPower, StarterClickPower+1)
	}

	if err := e.BuyUpgrade(1); err != nil {
		t.Fatalf("second purchase failed: %v", err)
	}
	state = e.State()
	if state.Clicker.Coins != 5 {
		t.Fatalf("coins got=%d want=5", state.Clicker.Coins)
	}

	// 5 coins left, level 2 costs 22.
	if err := e.BuyUpgrade(1); err != ErrInsufficientFunds {
		t.Fatalf("got err=%v want=%v", err, ErrInsufficientFunds)
	}
}

func TestBuyUpgradeUnknown(t *testing.T) {
	e := newTestEngine(t)
	if err := e.BuyUpgrade(99); err != ErrUnknownUpgrade {
		t.Fatalf("got err=%v want=%v", err, ErrUnknownUpgrade)
	}
}

func TestUpgradeCoinsNeverTouchCash(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 10; i++ {
		e.Click()
	}
	cashBefore := e.State().Portfolio.CashMicros

	if err := e.BuyUpgrade(1); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}
	if got := e.State().Portfolio.CashMicros; got != cashBefore {
		t.Fatalf("upgrade purchase changed cash: got=%d want=%d", got, cashBefore)
	}
}

func TestSimTickGatedByRunning(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Buy("samsung", 10*UnitScale); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	if e.SimTick() {
		t.Fatalf("paused tick revalued")
	}
	if got := e.State().Portfolio.GameTime; got != 0 {
		t.Fatalf("paused tick advanced game time to %d", got)
	}

	e.SetRunning(true)
	priceBefore := e.State().Portfolio.Holdings[0].PriceMicros
	for i := 1; i <= 4; i++ {
		if e.SimTick() {
			t.Fatalf("tick %d revalued early", i)
		}
		if got := e.State().Portfolio.Holdings[0].PriceMicros; got != priceBefore {
			t.Fatalf("tick %d moved price without revaluation", i)
		}
	}
	if !e.SimTick() {
		t.Fatalf("fifth tick did not revalue")
	}

	state := e.State()
	if state.Portfolio.GameTime != 5 {
		t.Fatalf("game time got=%d want=5", state.Portfolio.GameTime)
	}
	h := state.Portfolio.Holdings[0]
	if h.PriceMicros <= 0 {
		t.Fatalf("revalued price not positive: %d", h.PriceMicros)
	}
	if h.TotalValueMicros != mustNotional(h.PriceMicros, h.QuantityUnits) {
		t.Fatalf("holding value out of sync after revaluation")
	}
}

func TestResetRestoresBothAggregates(t *testing.T) {
	e := newTestEngine(t)
	e.Click()
	if err := e.Buy("samsung", UnitScale); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	e.SetRunning(true)
	e.SimTick()

	e.Reset()
	state := e.State()
	if state.Portfolio.CashMicros != StarterCashMicros {
		t.Fatalf("cash got=%d want=%d", state.Portfolio.CashMicros, StarterCashMicros)
	}
	if len(state.Portfolio.Holdings) != 0 {
		t.Fatalf("holdings survived reset")
	}
	if state.Portfolio.GameTime != 0 || state.Portfolio.Running {
		t.Fatalf("clock state survived reset")
	}
	if state.Clicker.Coins != 0 || state.Clicker.ClickPower != StarterClickPower || state.Clicker.AutoClickRate != 0 {
		t.Fatalf("clicker state survived reset")
	}
	for _, u := range state.Clicker.Upgrades {
		if u.Level != 0 {
			t.Fatalf("upgrade %d level survived reset", u.ID)
		}
	}
}

func TestRestoreRepairsSnapshot(t *testing.T) {
	e := newTestEngine(t)

	e.Restore(Snapshot{
		Portfolio: PortfolioState{
			CashMicros: -5,
			Holdings: []Holding{
				{AssetID: "samsung", PriceMicros: 55_500 * market.MicrosPerWon, QuantityUnits: 2 * UnitScale, Type: market.AssetStock},
				{AssetID: "kakao", PriceMicros: 49_800 * market.MicrosPerWon, QuantityUnits: 0, Type: market.AssetStock},
			},
			GameTime: 42,
		},
		Clicker: ClickerState{Coins: 7},
	})

	state := e.State()
	if state.Portfolio.CashMicros != 0 {
		t.Fatalf("negative cash not clamped: %d", state.Portfolio.CashMicros)
	}
	if len(state.Portfolio.Holdings) != 1 {
		t.Fatalf("zero-quantity holding not dropped, got %d holdings", len(state.Portfolio.Holdings))
	}
	h := state.Portfolio.Holdings[0]
	if h.TotalValueMicros != mustNotional(h.PriceMicros, h.QuantityUnits) {
		t.Fatalf("restored holding value not recomputed")
	}
	if state.Clicker.ClickPower != StarterClickPower {
		t.Fatalf("click power not repaired: %d", state.Clicker.ClickPower)
	}
	if len(state.Clicker.Upgrades) != len(defaultUpgrades()) {
		t.Fatalf("upgrade catalog not re-seeded, got %d", len(state.Clicker.Upgrades))
	}
	if state.Portfolio.GameTime != 42 {
		t.Fatalf("game time got=%d want=42", state.Portfolio.GameTime)
	}
}

func TestVersionTracksMutations(t *testing.T) {
	e := newTestEngine(t)
	v0 := e.Version()

	e.State()
	if e.Version() != v0 {
		t.Fatalf("read bumped version")
	}

	e.Click()
	if e.Version() == v0 {
		t.Fatalf("click did not bump version")
	}

	v1 := e.Version()
	e.SetRunning(false) // already paused
	if e.Version() != v1 {
		t.Fatalf("no-op running change bumped version")
	}
}
