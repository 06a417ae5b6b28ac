package market

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Chart volatility is wider than the walk volatility so the mock series
// look like intraday ranges rather than tick noise.
const (
	chartVolatilityStock  = 0.02
	chartVolatilityCrypto = 0.05
)

type TimeFrame string

const (
	Frame1D TimeFrame = "1D"
	Frame1W TimeFrame = "1W"
	Frame1M TimeFrame = "1M"
	Frame3M TimeFrame = "3M"
	Frame1Y TimeFrame = "1Y"
	Frame5Y TimeFrame = "5Y"
)

func ParseTimeFrame(s string) (TimeFrame, error) {
	switch TimeFrame(s) {
	case Frame1D, Frame1W, Frame1M, Frame3M, Frame1Y, Frame5Y:
		return TimeFrame(s), nil
	case "":
		return Frame1D, nil
	}
	return "", fmt.Errorf("unknown time frame %q", s)
}

type ChartPoint struct {
	Timestamp   int64 `json:"timestamp"`
	ValueMicros int64 `json:"value_micros"`
}

func chartVolatility(t AssetType) float64 {
	if t == AssetCrypto {
		return chartVolatilityCrypto
	}
	return chartVolatilityStock
}

type frameShape struct {
	span  time.Duration
	step  time.Duration
	scale float64
}

func shapeFor(frame TimeFrame, now time.Time) frameShape {
	switch frame {
	case Frame1W:
		return frameShape{span: 7 * 24 * time.Hour, step: 24 * time.Hour, scale: 2}
	case Frame1M:
		return frameShape{span: 30 * 24 * time.Hour, step: 24 * time.Hour, scale: 3}
	case Frame3M:
		return frameShape{span: 90 * 24 * time.Hour, step: 3 * 24 * time.Hour, scale: 4}
	case Frame1Y:
		return frameShape{span: 365 * 24 * time.Hour, step: 7 * 24 * time.Hour, scale: 6}
	case Frame5Y:
		return frameShape{span: 5 * 365 * 24 * time.Hour, step: 30 * 24 * time.Hour, scale: 10}
	default:
		// Trading day: from 09:00 local in 10-minute steps.
		open := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location())
		return frameShape{span: now.Sub(open), step: 10 * time.Minute, scale: 1}
	}
}

// ChartSeries produces a mock value series around the asset's base price
// for one time frame. Points never run past now.
func ChartSeries(rng *rand.Rand, asset Asset, frame TimeFrame, now time.Time) []ChartPoint {
	shape := shapeFor(frame, now)
	if shape.span <= 0 {
		return nil
	}
	vol := chartVolatility(asset.Type) * shape.scale
	base := float64(asset.PriceMicros)

	var out []ChartPoint
	for at := now.Add(-shape.span); !at.After(now); at = at.Add(shape.step) {
		noise := rng.Float64()*2 - 1
		v := int64(math.Round(base + noise*base*vol))
		if v < 1 {
			v = 1
		}
		out = append(out, ChartPoint{Timestamp: at.UnixMilli(), ValueMicros: v})
	}
	return out
}

type Candle struct {
	Date        string `json:"date"`
	OpenMicros  int64  `json:"open_micros"`
	HighMicros  int64  `json:"high_micros"`
	LowMicros   int64  `json:"low_micros"`
	CloseMicros int64  `json:"close_micros"`
	Volume      int64  `json:"volume"`
}

// History produces 31 daily OHLCV candles ending today. Open/high/low/close
// keep the usual ordering: low <= open,close <= high.
func History(rng *rand.Rand, asset Asset, now time.Time) []Candle {
	base := float64(asset.PriceMicros)
	vol := chartVolatility(asset.Type)

	out := make([]Candle, 0, 31)
	for i := 30; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		dayVol := vol * (rng.Float64() + 0.5)

		open := base * (1 + (rng.Float64()*2-1)*dayVol)
		high := open * (1 + rng.Float64()*dayVol)
		low := open * (1 - rng.Float64()*dayVol)
		close := low + rng.Float64()*(high-low)
		volume := int64(float64(asset.Volume) * (0.5 + rng.Float64()))

		out = append(out, Candle{
			Date:        day.Format("2006-01-02"),
			OpenMicros:  clampMicros(open),
			HighMicros:  clampMicros(high),
			LowMicros:   clampMicros(low),
			CloseMicros: clampMicros(close),
			Volume:      volume,
		})
	}
	return out
}

func clampMicros(v float64) int64 {
	m := int64(math.Round(v))
	if m < 1 {
		return 1
	}
	return m
}
