package market

import (
	"math"
	"math/rand"
	"sync"
)

// Tick volatility of the random walk, as a fraction of the current price.
const (
	WalkVolatilityStock  = 0.01
	WalkVolatilityCrypto = 0.02
)

func walkVolatility(t AssetType) float64 {
	if t == AssetCrypto {
		return WalkVolatilityCrypto
	}
	return WalkVolatilityStock
}

// Simulate advances one price by a single bounded random-walk step:
// uniform noise in [-1, 1] scaled by price and per-category volatility.
// The walk never drops a price below one micro-won, so a price stays
// positive for any tick count.
func Simulate(rng *rand.Rand, priceMicros int64, t AssetType) int64 {
	noise := rng.Float64()*2 - 1
	delta := int64(math.Round(noise * float64(priceMicros) * walkVolatility(t)))
	next := priceMicros + delta
	if next < 1 {
		next = 1
	}
	return next
}

// Quote is one row of the live board.
type Quote struct {
	Asset
}

// Board holds the live marks for every catalog asset. Refresh walks all
// prices one step and recomputes the percent change of that step.
type Board struct {
	mu     sync.RWMutex
	rng    *rand.Rand
	quotes []Quote
	byID   map[string]int
}

func NewBoard(catalog *Catalog, rng *rand.Rand) *Board {
	assets := catalog.All()
	b := &Board{
		rng:    rng,
		quotes: make([]Quote, len(assets)),
		byID:   make(map[string]int, len(assets)),
	}
	for i, a := range assets {
		b.quotes[i] = Quote{Asset: a}
		b.byID[a.ID] = i
	}
	return b
}

func (b *Board) Refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.quotes {
		q := &b.quotes[i]
		prev := q.PriceMicros
		q.PriceMicros = Simulate(b.rng, prev, q.Type)
		if prev > 0 {
			q.ChangePct = float64(q.PriceMicros-prev) / float64(prev) * 100
		}
	}
}

func (b *Board) Snapshot() []Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Quote, len(b.quotes))
	copy(out, b.quotes)
	return out
}

func (b *Board) Get(id string) (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.byID[id]
	if !ok {
		return Quote{}, false
	}
	return b.quotes[i], true
}

// PriceMicros returns the live mark for an asset id.
func (b *Board) PriceMicros(id string) (int64, bool) {
	q, ok := b.Get(id)
	if !ok {
		return 0, false
	}
	return q.PriceMicros, true
}
