package game

import (
	"errors"
	"fmt"
	"math"

	"wondesk/internal/market"
)

const (
	// 1 share (or coin) of quantity = 10_000 units, so crypto positions
	// can be fractional while the math stays integral.
	UnitScale = int64(10_000)

	StarterCashMicros = int64(10_000_000) * market.MicrosPerWon
	StarterClickPower = int64(1)

	upgradeCostGrowth = 1.5
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrWholeSharesOnly      = errors.New("stock orders must be whole shares")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrUnknownAsset         = errors.New("unknown asset")
	ErrUnknownUpgrade       = errors.New("unknown upgrade")
)

func SharesToUnits(v float64) (int64, error) {
	if v <= 0 {
		return 0, ErrInvalidQuantity
	}
	return int64(math.Round(v * float64(UnitScale))), nil
}

func UnitsToShares(v int64) float64 {
	return float64(v) / float64(UnitScale)
}

func notionalMicros(priceMicros, quantityUnits int64) (int64, error) {
	if priceMicros < 0 || quantityUnits < 0 {
		return 0, fmt.Errorf("negative notional inputs")
	}
	if priceMicros == 0 || quantityUnits == 0 {
		return 0, nil
	}
	if quantityUnits > math.MaxInt64/priceMicros {
		return 0, fmt.Errorf("notional overflow")
	}
	return priceMicros * quantityUnits / UnitScale, nil
}

// UpgradeCost is the purchase price of an upgrade at a given level:
// floor(baseCost * 1.5^level). Strictly increasing in level.
func UpgradeCost(baseCost int64, level int32) int64 {
	return int64(math.Floor(float64(baseCost) * math.Pow(upgradeCostGrowth, float64(level))))
}
