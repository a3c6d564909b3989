package dataflows

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalcSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	sma := calcSMA(closes, 3)

	if !math.IsNaN(sma[0]) || !math.IsNaN(sma[1]) {
		t.Fatal("warmup slots must be NaN")
	}
	for i, want := range map[int]float64{2: 2, 3: 3, 4: 4} {
		if !almostEqual(sma[i], want) {
			t.Fatalf("sma[%d] = %v, want %v", i, sma[i], want)
		}
	}
}

func TestCalcSMAShortSeries(t *testing.T) {
	sma := calcSMA([]float64{1, 2}, 5)
	for i, v := range sma {
		if !math.IsNaN(v) {
			t.Fatalf("sma[%d] = %v, want NaN", i, v)
		}
	}
}

func TestCalcEMASeededWithSMA(t *testing.T) {
	closes := []float64{2, 4, 6, 8}
	ema := calcEMA(closes, 3)

	if !math.IsNaN(ema[0]) || !math.IsNaN(ema[1]) {
		t.Fatal("warmup slots must be NaN")
	}
	if !almostEqual(ema[2], 4) {
		t.Fatalf("seed = %v, want SMA 4", ema[2])
	}
	// multiplier = 2/(3+1) = 0.5, so ema[3] = 8*0.5 + 4*0.5 = 6.
	if !almostEqual(ema[3], 6) {
		t.Fatalf("ema[3] = %v, want 6", ema[3])
	}
}

func TestCalcRSIMonotonicSeries(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(i + 1)
	}
	rsi := calcRSI(up, 14)
	if !almostEqual(rsi[len(rsi)-1], 100) {
		t.Fatalf("all-gains RSI = %v, want 100", rsi[len(rsi)-1])
	}

	down := make([]float64, 20)
	for i := range down {
		down[i] = float64(100 - i)
	}
	rsi = calcRSI(down, 14)
	if !almostEqual(rsi[len(rsi)-1], 0) {
		t.Fatalf("all-losses RSI = %v, want 0", rsi[len(rsi)-1])
	}
}

func TestIndicatorReportWindow(t *testing.T) {
	bars := make([]Bar, 60)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = Bar{
			Date:  base.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(100 + float64(i)),
		}
	}

	report := IndicatorReport("AAPL", bars, 5)

	if !strings.Contains(report, "Technical indicators for AAPL (last 5 trading days):") {
		t.Fatalf("header wrong:\n%s", report)
	}
	if got := strings.Count(report, "* "); got != 5 {
		t.Fatalf("expected 5 rows, got %d:\n%s", got, report)
	}
	// All indicators are warmed up by day 60.
	last := report[strings.LastIndex(report, "* "):]
	for _, name := range []string{"sma20=", "sma50=", "ema10=", "rsi14="} {
		if !strings.Contains(last, name) {
			t.Fatalf("last row missing %s:\n%s", name, last)
		}
	}
}

func TestIndicatorReportSkipsWarmupValues(t *testing.T) {
	bars := make([]Bar, 10)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = Bar{Date: base.AddDate(0, 0, i), Close: decimal.NewFromInt(int64(100 + i))}
	}

	report := IndicatorReport("AAPL", bars, 10)
	if strings.Contains(report, "sma50=") {
		t.Fatalf("sma50 cannot be computed from 10 bars:\n%s", report)
	}
	if strings.Contains(report, "NaN") {
		t.Fatalf("NaN leaked into report:\n%s", report)
	}
}
