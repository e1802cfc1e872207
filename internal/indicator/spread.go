package indicator

import (
	"strings"

	talib "github.com/markcheno/go-talib"
)

// Condition 为点差反映的流动性状况。
type Condition string

const (
	ConditionTight  Condition = "TIGHT"
	ConditionNormal Condition = "NORMAL"
	ConditionWide   Condition = "WIDE"
)

const (
	messageTight  = "High liquidity - favorable trading conditions"
	messageNormal = "Normal market conditions"
	messageWide   = "Low liquidity - exercise caution"
)

// Thresholds 为点差百分比分档阈值（单位：%）。
type Thresholds struct {
	Tight  float64 `json:"tight"`
	Normal float64 `json:"normal"`
	Wide   float64 `json:"wide"`
}

// DefaultThresholds 为未单独配置币种时使用的阈值。
func DefaultThresholds() Thresholds {
	return Thresholds{Tight: 0.1, Normal: 0.5, Wide: 1.0}
}

// DefaultSymbolThresholds 返回内置的币种阈值表。
func DefaultSymbolThresholds() map[string]Thresholds {
	return map[string]Thresholds{
		"BTC": {Tight: 0.05, Normal: 0.2, Wide: 0.5},
		"XRP": {Tight: 0.2, Normal: 1.0, Wide: 2.0},
	}
}

// SpreadStats 汇总窗口内的点差统计与流动性判断。
type SpreadStats struct {
	CurrentSpread           float64 `json:"current_spread"`
	CurrentSpreadPercentage float64 `json:"current_spread_percentage"`
	AvgSpread               float64 `json:"avg_spread"`
	AvgSpreadPercentage     float64 `json:"avg_spread_percentage"`
	MaxSpread               float64 `json:"max_spread"`
	MinSpread               float64 `json:"min_spread"`
	// Volatility 为点差百分比的总体标准差，样本不足两行时为 nil。
	Volatility *float64   `json:"volatility,omitempty"`
	Condition  Condition  `json:"condition"`
	Message    string     `json:"message"`
	Thresholds Thresholds `json:"thresholds"`
}

// SpreadAnalyzer 根据买卖点差判断市场流动性。
type SpreadAnalyzer struct {
	defaults Thresholds
	symbols  map[string]Thresholds
}

// NewSpreadAnalyzer 创建点差分析器，overrides 会覆盖或补充内置币种阈值。
func NewSpreadAnalyzer(overrides map[string]Thresholds) *SpreadAnalyzer {
	symbols := DefaultSymbolThresholds()
	for symbol, th := range overrides {
		symbols[strings.ToUpper(strings.TrimSpace(symbol))] = th
	}
	return &SpreadAnalyzer{
		defaults: DefaultThresholds(),
		symbols:  symbols,
	}
}

// ThresholdsFor 返回币种适用的阈值。
func (a *SpreadAnalyzer) ThresholdsFor(symbol string) Thresholds {
	if th, ok := a.symbols[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return th
	}
	return a.defaults
}

// Analyze 计算点差统计；窗口为空时 ok 为 false。
func (a *SpreadAnalyzer) Analyze(symbol string, series Series) (SpreadStats, bool) {
	n := len(series.SpreadPercentage)
	if n == 0 {
		return SpreadStats{}, false
	}

	thresholds := a.ThresholdsFor(symbol)
	minSpread, maxSpread := extrema(series.SpreadAbsolute)
	current := Last(series.SpreadPercentage)

	stats := SpreadStats{
		CurrentSpread:           Last(series.SpreadAbsolute),
		CurrentSpreadPercentage: current,
		AvgSpread:               mean(series.SpreadAbsolute),
		AvgSpreadPercentage:     mean(series.SpreadPercentage),
		MaxSpread:               maxSpread,
		MinSpread:               minSpread,
		Volatility:              spreadVolatility(series.SpreadPercentage),
		Thresholds:              thresholds,
	}
	stats.Condition, stats.Message = classifySpread(current, thresholds)

	return stats, true
}

func spreadVolatility(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	std := Last(talib.StdDev(values, len(values), 1))
	return &std
}

func classifySpread(pct float64, th Thresholds) (Condition, string) {
	switch {
	case pct <= th.Tight:
		return ConditionTight, messageTight
	case pct <= th.Normal:
		return ConditionNormal, messageNormal
	default:
		return ConditionWide, messageWide
	}
}
