package dataflows

import (
	"fmt"
	"math"
	"strings"
)

// IndicatorReport renders moving averages, RSI and the latest closes for the
// trailing window as LLM-readable text. Bars must be sorted oldest first.
// Indicator slices are aligned with bars; warmup slots hold NaN.
func IndicatorReport(symbol string, bars []Bar, days int) string {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}

	sma20 := calcSMA(closes, 20)
	sma50 := calcSMA(closes, 50)
	ema10 := calcEMA(closes, 10)
	rsi14 := calcRSI(closes, 14)

	start := 0
	if len(bars) > days {
		start = len(bars) - days
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Technical indicators for %s (last %d trading days):\n", symbol, len(bars)-start)
	for i := start; i < len(bars); i++ {
		fmt.Fprintf(&b, "* %s: close=%s", bars[i].Date.Format("2006-01-02"), bars[i].Close.StringFixed(2))
		appendIndicator(&b, "sma20", sma20[i])
		appendIndicator(&b, "sma50", sma50[i])
		appendIndicator(&b, "ema10", ema10[i])
		appendIndicator(&b, "rsi14", rsi14[i])
		b.WriteString("\n")
	}
	return b.String()
}

func appendIndicator(b *strings.Builder, name string, v float64) {
	if math.IsNaN(v) {
		return
	}
	fmt.Fprintf(b, " %s=%.2f", name, v)
}

// calcSMA computes the simple moving average of closes over period.
func calcSMA(closes []float64, period int) []float64 {
	result := nanSlice(len(closes))
	if len(closes) < period {
		return result
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			result[i] = sum / float64(period)
		}
	}
	return result
}

// calcEMA computes the exponential moving average, seeded with the SMA of
// the first period values.
func calcEMA(closes []float64, period int) []float64 {
	result := nanSlice(len(closes))
	if len(closes) < period {
		return result
	}

	multiplier := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	ema := sum / float64(period)
	result[period-1] = ema

	for i := period; i < len(closes); i++ {
		ema = closes[i]*multiplier + ema*(1-multiplier)
		result[i] = ema
	}
	return result
}

// calcRSI computes Wilder's relative strength index over period.
func calcRSI(closes []float64, period int) []float64 {
	result := nanSlice(len(closes))
	if len(closes) <= period {
		return result
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[i] = rsiValue(avgGain, avgLoss)
	}
	return result
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
