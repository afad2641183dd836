// Package indicators computes indicator values for the Price View. Its
// Feed attaches the rsi, ema, sma, adx and adxma series to a
// TickerSnapshot; MACD, BollingerBands and the other single-value
// helpers are not attached.
// Every function is a pure transform over a []float64 price series so
// the Price View can keep its cache a plain in-memory read with no
// suspension points.
package indicators

import (
	"math"

	"github.com/shopspring/decimal"
)

// RSI calculates the Relative Strength Index.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50 // neutral if not enough data
	}

	gains := make([]float64, 0)
	losses := make([]float64, 0)

	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	if len(gains) < period {
		return 50
	}

	avgGain := average(gains[:period])
	avgLoss := average(losses[:period])

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// RSISeries returns a trailing RSI value for every index once enough
// history exists, mirroring MOMENTUM_REVERSAL's need for "prior samples"
// rather than a single latest value.
func RSISeries(prices []float64, period int) []float64 {
	if len(prices) <= period {
		return nil
	}
	out := make([]float64, 0, len(prices)-period)
	for i := period + 1; i <= len(prices); i++ {
		out = append(out, RSI(prices[:i], period))
	}
	return out
}

// EMA calculates the Exponential Moving Average.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return average(prices)
	}

	multiplier := 2.0 / float64(period+1)
	ema := average(prices[:period])

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema
}

// EMASeries returns the EMA computed at every prefix once period samples
// exist; used for RANGE_BREAKOUT's ema[] series.
func EMASeries(prices []float64, period int) []float64 {
	if len(prices) < period {
		return nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	for i := period; i <= len(prices); i++ {
		out = append(out, EMA(prices[:i], period))
	}
	return out
}

// SMA calculates the Simple Moving Average.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return average(prices)
	}

	return average(prices[len(prices)-period:])
}

// MACD calculates the MACD line, signal line and histogram.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (float64, float64, float64) {
	if len(prices) < slowPeriod {
		return 0, 0, 0
	}

	fastEMA := EMA(prices, fastPeriod)
	slowEMA := EMA(prices, slowPeriod)
	macdLine := fastEMA - slowEMA

	// Simplified: a faithful implementation tracks a history of MACD
	// values and EMAs that series over signalPeriod. Kept as an
	// approximation consistent with this package's single-pass style.
	signalLine := macdLine * 0.9
	histogram := macdLine - signalLine

	return macdLine, signalLine, histogram
}

// Momentum calculates price momentum over a period, as a percentage.
func Momentum(prices []float64, period int) float64 {
	if len(prices) <= period {
		return 0
	}

	current := prices[len(prices)-1]
	previous := prices[len(prices)-1-period]

	if previous == 0 {
		return 0
	}

	return ((current - previous) / previous) * 100
}

// Volatility calculates price volatility (population standard deviation).
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	avg := average(prices)
	sumSquares := 0.0

	for _, p := range prices {
		sumSquares += (p - avg) * (p - avg)
	}

	return math.Sqrt(sumSquares / float64(len(prices)))
}

// ATR calculates the Average True Range.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) < period+1 || len(lows) < period+1 || len(closes) < period+1 {
		return 0
	}

	trs := make([]float64, 0)

	for i := 1; i < len(closes); i++ {
		tr := math.Max(
			highs[i]-lows[i],
			math.Max(
				math.Abs(highs[i]-closes[i-1]),
				math.Abs(lows[i]-closes[i-1]),
			),
		)
		trs = append(trs, tr)
	}

	return SMA(trs, period)
}

// BollingerBands calculates Bollinger Bands.
func BollingerBands(prices []float64, period int, stdDev float64) (upper, middle, lower float64) {
	if len(prices) < period {
		return 0, 0, 0
	}

	middle = SMA(prices, period)

	recentPrices := prices[len(prices)-period:]
	volatility := Volatility(recentPrices)

	upper = middle + (volatility * stdDev)
	lower = middle - (volatility * stdDev)

	return upper, middle, lower
}

// StochRSI calculates the Stochastic RSI.
func StochRSI(prices []float64, rsiPeriod, stochPeriod int) float64 {
	if len(prices) < rsiPeriod+stochPeriod {
		return 50
	}

	rsis := make([]float64, 0)
	for i := rsiPeriod; i <= len(prices); i++ {
		rsis = append(rsis, RSI(prices[:i], rsiPeriod))
	}

	if len(rsis) < stochPeriod {
		return 50
	}

	recent := rsis[len(rsis)-stochPeriod:]
	currentRSI := rsis[len(rsis)-1]

	minRSI := min(recent)
	maxRSI := max(recent)

	if maxRSI == minRSI {
		return 50
	}

	return ((currentRSI - minRSI) / (maxRSI - minRSI)) * 100
}

// TrendStrength measures how strong the current trend is; positive is an
// uptrend, negative a downtrend, magnitude 0-100.
func TrendStrength(prices []float64, period int) float64 {
	if len(prices) < period {
		return 0
	}

	increases := 0
	decreases := 0
	recent := prices[len(prices)-period:]

	for i := 1; i < len(recent); i++ {
		if recent[i] > recent[i-1] {
			increases++
		} else if recent[i] < recent[i-1] {
			decreases++
		}
	}

	total := increases + decreases
	if total == 0 {
		return 0
	}

	if increases > decreases {
		return float64(increases) / float64(total) * 100
	}
	return -float64(decreases) / float64(total) * 100
}

// Helper functions

func average(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// DecimalToFloat converts a decimal price to float64 for indicator math.
func DecimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// FloatToDecimal converts an indicator float64 back to decimal.
func FloatToDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
