package indicator

import (
	"math"
	"time"
)

// Trend 为平均K线的趋势标签。
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// HeikinAshiCandle 为单行输入对应的平均K线。
type HeikinAshiCandle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	HAOpen    float64   `json:"ha_open"`
	HAHigh    float64   `json:"ha_high"`
	HALow     float64   `json:"ha_low"`
	HAClose   float64   `json:"ha_close"`
	Trend     Trend     `json:"trend"`
}

// HeikinAshi 对整个窗口重新计算平均K线，输出与输入等长。
// ha_open 以窗口首行的真实开盘价为种子，逐行递推；窗口滑动后种子随之改变，
// 旧行的结果也会相应变化。
func HeikinAshi(series Series) []HeikinAshiCandle {
	n := series.Len()
	candles := make([]HeikinAshiCandle, n)
	if n == 0 {
		return candles
	}

	haOpen := series.Open[0]
	for i := 0; i < n; i++ {
		o, h, l, c := series.Open[i], series.High[i], series.Low[i], series.Close[i]
		haClose := (o + h + l + c) / 4

		candle := HeikinAshiCandle{
			Open:    o,
			High:    h,
			Low:     l,
			Close:   c,
			HAOpen:  haOpen,
			HAClose: haClose,
			HAHigh:  math.Max(h, math.Max(haOpen, haClose)),
			HALow:   math.Min(l, math.Min(haOpen, haClose)),
		}
		if i < len(series.Timestamps) {
			candle.Timestamp = series.Timestamps[i]
		}
		candle.Trend = classifyTrend(candle)
		candles[i] = candle

		haOpen = (haOpen + haClose) / 2
	}

	return candles
}

// 无下影线的阳线视为看涨，无上影线的阴线视为看跌。
func classifyTrend(c HeikinAshiCandle) Trend {
	switch {
	case c.HAClose > c.HAOpen && c.HALow == c.HAOpen:
		return TrendBullish
	case c.HAClose < c.HAOpen && c.HAHigh == c.HAOpen:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// LatestTrend 返回最后一根平均K线的趋势，空输入返回 neutral。
func LatestTrend(candles []HeikinAshiCandle) Trend {
	if len(candles) == 0 {
		return TrendNeutral
	}
	return candles[len(candles)-1].Trend
}
