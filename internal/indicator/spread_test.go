package indicator

import (
	"math"
	"testing"
)

func spreadSeries(abs, pct []float64) Series {
	return Series{SpreadAbsolute: abs, SpreadPercentage: pct}
}

func TestSpreadAnalyzer_EmptyWindow(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	if _, ok := analyzer.Analyze("BTC", Series{}); ok {
		t.Fatalf("expected absent result for empty window")
	}
}

func TestSpreadAnalyzer_SingleRowHasNoVolatility(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	stats, ok := analyzer.Analyze("ETH", spreadSeries([]float64{2}, []float64{0.3}))
	if !ok {
		t.Fatalf("expected result for single row")
	}
	if stats.Volatility != nil {
		t.Errorf("volatility must be absent below two rows, got %v", *stats.Volatility)
	}
	if stats.Condition != ConditionNormal {
		t.Errorf("expected NORMAL with default thresholds, got %s", stats.Condition)
	}
}

func TestSpreadAnalyzer_Aggregates(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	stats, ok := analyzer.Analyze("ETH", spreadSeries(
		[]float64{1, 3, 2, 6},
		[]float64{1, 3, 1, 3},
	))
	if !ok {
		t.Fatalf("expected result")
	}

	if stats.CurrentSpread != 6 || stats.CurrentSpreadPercentage != 3 {
		t.Errorf("unexpected current values: %v / %v", stats.CurrentSpread, stats.CurrentSpreadPercentage)
	}
	if stats.AvgSpread != 3 {
		t.Errorf("expected avg spread 3, got %v", stats.AvgSpread)
	}
	if stats.AvgSpreadPercentage != 2 {
		t.Errorf("expected avg spread percentage 2, got %v", stats.AvgSpreadPercentage)
	}
	if stats.MaxSpread != 6 || stats.MinSpread != 1 {
		t.Errorf("unexpected extrema: max=%v min=%v", stats.MaxSpread, stats.MinSpread)
	}
	if stats.Volatility == nil {
		t.Fatalf("expected volatility for four rows")
	}
	// 总体标准差：均值2，偏差均为1
	if math.Abs(*stats.Volatility-1) > 1e-9 {
		t.Errorf("expected population std-dev 1, got %v", *stats.Volatility)
	}
	if stats.Condition != ConditionWide || stats.Message != messageWide {
		t.Errorf("expected WIDE, got %s (%s)", stats.Condition, stats.Message)
	}
}

func TestSpreadAnalyzer_TightBoundaryIsInclusive(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	stats, ok := analyzer.Analyze("ETH", spreadSeries([]float64{5, 1}, []float64{0.9, 0.1}))
	if !ok {
		t.Fatalf("expected result")
	}
	if stats.Condition != ConditionTight {
		t.Fatalf("spread exactly at tight threshold must be TIGHT, got %s", stats.Condition)
	}
	if stats.Message != messageTight {
		t.Errorf("unexpected message: %s", stats.Message)
	}
}

func TestSpreadAnalyzer_NormalBoundaryIsInclusive(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	stats, _ := analyzer.Analyze("ETH", spreadSeries([]float64{1}, []float64{0.5}))
	if stats.Condition != ConditionNormal {
		t.Fatalf("spread exactly at normal threshold must be NORMAL, got %s", stats.Condition)
	}
}

func TestSpreadAnalyzer_ClassifiesOnLatestRowOnly(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	stats, _ := analyzer.Analyze("ETH", spreadSeries(
		[]float64{50, 50, 0.01},
		[]float64{5, 5, 0.01},
	))
	if stats.Condition != ConditionTight {
		t.Fatalf("expected TIGHT from latest row, got %s", stats.Condition)
	}
}

func TestSpreadAnalyzer_SymbolThresholds(t *testing.T) {
	analyzer := NewSpreadAnalyzer(map[string]Thresholds{
		"eth": {Tight: 0.01, Normal: 0.02, Wide: 0.05},
	})

	if got := analyzer.ThresholdsFor("BTC"); got.Tight != 0.05 {
		t.Errorf("expected built-in BTC thresholds, got %+v", got)
	}
	if got := analyzer.ThresholdsFor("ETH"); got.Tight != 0.01 {
		t.Errorf("expected configured ETH thresholds, got %+v", got)
	}
	if got := analyzer.ThresholdsFor("DOGE"); got != DefaultThresholds() {
		t.Errorf("expected default thresholds, got %+v", got)
	}

	// 0.08% 对默认阈值为 TIGHT，对 BTC 为 NORMAL
	series := spreadSeries([]float64{1}, []float64{0.08})
	if stats, _ := analyzer.Analyze("BTC", series); stats.Condition != ConditionNormal {
		t.Errorf("BTC: expected NORMAL, got %s", stats.Condition)
	}
	if stats, _ := analyzer.Analyze("DOGE", series); stats.Condition != ConditionTight {
		t.Errorf("DOGE: expected TIGHT, got %s", stats.Condition)
	}
}

func TestSpreadAnalyzer_ToleratesCrossedQuotes(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	stats, ok := analyzer.Analyze("ETH", spreadSeries([]float64{-1, 2}, []float64{-0.5, 0.2}))
	if !ok {
		t.Fatalf("expected result")
	}
	if stats.MinSpread != -1 {
		t.Errorf("expected negative min spread to be kept, got %v", stats.MinSpread)
	}
}

func TestSpreadAnalyzer_TinyVolatilityClampsToZero(t *testing.T) {
	analyzer := NewSpreadAnalyzer(nil)
	// 方差 1e-16 低于 talib 的 1e-14 截断，结果为 0 而非缺失
	stats, ok := analyzer.Analyze("ETH", spreadSeries(
		[]float64{1, 1},
		[]float64{0.05, 0.05000002},
	))
	if !ok {
		t.Fatalf("expected result")
	}
	if stats.Volatility == nil {
		t.Fatalf("volatility must be present for two rows")
	}
	if *stats.Volatility != 0 {
		t.Errorf("expected clamped volatility 0, got %v", *stats.Volatility)
	}
	if stats.Condition != ConditionTight {
		t.Errorf("clamp must not affect classification, got %s", stats.Condition)
	}
}
