package market

import (
	"math"
	"time"
)

// Quote 表示某一时刻单个币种的报价观测。
type Quote struct {
	Symbol           string    `json:"symbol"`
	Timestamp        time.Time `json:"timestamp"`
	Bid              float64   `json:"bid"`
	Ask              float64   `json:"ask"`
	Last             float64   `json:"last"`
	Open             float64   `json:"open"`
	High             float64   `json:"high"`
	Low              float64   `json:"low"`
	Close            float64   `json:"close"`
	SpreadAbsolute   float64   `json:"spread_absolute"`
	SpreadPercentage float64   `json:"spread_percentage"`
	Volume           float64   `json:"volume,omitempty"`
	HasVolume        bool      `json:"has_volume,omitempty"`
}

// NewQuote 根据买一、卖一与最新成交价构造报价，并推导 OHLC 与点差字段。
// 行情源没有区间内真实 OHLC，因此 open=close=last，high/low 取三者极值。
// 买卖价倒挂时点差为负，照常保留。
func NewQuote(symbol string, ts time.Time, bid, ask, last float64) Quote {
	spread := ask - bid
	spreadPct := 0.0
	if bid > 0 {
		spreadPct = spread / bid * 100
	}

	return Quote{
		Symbol:           symbol,
		Timestamp:        ts,
		Bid:              bid,
		Ask:              ask,
		Last:             last,
		Open:             last,
		High:             math.Max(bid, math.Max(ask, last)),
		Low:              math.Min(bid, math.Min(ask, last)),
		Close:            last,
		SpreadAbsolute:   spread,
		SpreadPercentage: spreadPct,
	}
}

// WithVolume 返回附带成交量的报价副本。
func (q Quote) WithVolume(volume float64) Quote {
	q.Volume = volume
	q.HasVolume = true
	return q
}
