package exchange

import "time"

// Ticker 为单次行情快照，价格均已校验为正的有限数。
type Ticker struct {
	Market    string
	Bid       float64
	Ask       float64
	Last      float64
	Volume24h float64
	Timestamp time.Time
}

// Spread 返回卖一与买一之差。
func (t Ticker) Spread() float64 {
	return t.Ask - t.Bid
}

// OrderBookLevel 表示挂单簿中的一档，Rate 为价格，Amount 为数量。
type OrderBookLevel struct {
	Amount float64
	Rate   float64
}

// OrderBookSnapshot 为公开挂单簿快照。
type OrderBookSnapshot struct {
	Coin      string
	Bids      []OrderBookLevel
	Asks      []OrderBookLevel
	Timestamp time.Time
}

// MarketSnapshot 聚合一次轮询取得的行情与挂单簿。
type MarketSnapshot struct {
	Symbol      string
	Ticker      Ticker
	OrderBook   OrderBookSnapshot
	RetrievedAt time.Time
}
