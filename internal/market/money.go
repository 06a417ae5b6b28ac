package market

import "math"

// All prices and cash amounts are carried as int64 micro-won to keep
// arithmetic exact. Market cap and volume stay in whole won because the
// largest caps would overflow int64 at micro precision.
const MicrosPerWon = int64(1_000_000)

func WonToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerWon)))
}

func MicrosToWon(v int64) float64 {
	return float64(v) / float64(MicrosPerWon)
}
