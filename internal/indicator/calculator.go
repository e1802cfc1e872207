package indicator

import (
	"crypto-monitor/internal/market"
)

// Result 为一次对整个窗口的分析汇总。
type Result struct {
	Symbol    string             `json:"symbol"`
	Rows      int                `json:"rows"`
	Candles   []HeikinAshiCandle `json:"candles"`
	Trend     Trend              `json:"trend"`
	Spread    *SpreadStats       `json:"spread,omitempty"`
	Profile   *VolumeProfile     `json:"profile,omitempty"`
	Imbalance OrderBookImbalance `json:"imbalance"`
	Signals   []string           `json:"signals"`
}

// OrderBook 为参与失衡计算的买卖两侧挂单。
type OrderBook struct {
	Bids []OrderLevel
	Asks []OrderLevel
}

// Calculator 在同一窗口上依次运行平均K线、点差与成交量分析。
// 各引擎均为纯函数，Calculator 不在调用之间保留任何状态。
type Calculator struct {
	spread *SpreadAnalyzer
	volume *VolumeProfiler
}

// NewCalculator 创建 Calculator。
func NewCalculator(spread *SpreadAnalyzer, volume *VolumeProfiler) *Calculator {
	if spread == nil {
		spread = NewSpreadAnalyzer(nil)
	}
	if volume == nil {
		volume = &VolumeProfiler{priceLevels: DefaultPriceLevels}
	}
	return &Calculator{
		spread: spread,
		volume: volume,
	}
}

// Compute 对完整窗口重新计算全部分析结果。
func (c *Calculator) Compute(symbol string, window []market.Quote, book OrderBook) Result {
	series := NewSeries(window)
	candles := HeikinAshi(series)

	result := Result{
		Symbol:    symbol,
		Rows:      series.Len(),
		Candles:   candles,
		Trend:     LatestTrend(candles),
		Imbalance: AnalyzeOrderBook(book.Bids, book.Asks),
	}

	if stats, ok := c.spread.Analyze(symbol, series); ok {
		result.Spread = &stats
	}

	var profile VolumeProfile
	if p, ok := c.volume.Profile(series); ok {
		profile = p
		result.Profile = &profile
	}
	result.Signals = Signals(result.Imbalance, profile)

	return result
}
