package report

import (
	"time"

	"go.uber.org/zap"

	"crypto-monitor/internal/exchange"
	"crypto-monitor/internal/indicator"
	"crypto-monitor/internal/market"
)

// PriceInfo 为最新报价摘要。
type PriceInfo struct {
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Last   float64 `json:"last"`
	Spread float64 `json:"spread"`
}

// Report 汇总一次轮询的全部分析结果，供终端输出与事件日志共用。
type Report struct {
	Symbol          string                       `json:"symbol"`
	Market          string                       `json:"market"`
	GeneratedAt     time.Time                    `json:"generated_at"`
	Price           PriceInfo                    `json:"price"`
	Volume24h       float64                      `json:"volume_24h,omitempty"`
	HistoryLength   int                          `json:"history_length"`
	HistoryCapacity int                          `json:"history_capacity"`
	Trend           indicator.Trend              `json:"trend"`
	Candles         []indicator.HeikinAshiCandle `json:"candles"`
	Spread          *indicator.SpreadStats       `json:"spread,omitempty"`
	Profile         *indicator.VolumeProfile     `json:"profile,omitempty"`
	Imbalance       indicator.OrderBookImbalance `json:"imbalance"`
	OrderBookLevels int                          `json:"order_book_levels"`
	Signals         []string                     `json:"signals"`
}

// Builder 负责把行情快照与历史窗口转换为 Report。
type Builder struct {
	calc   *indicator.Calculator
	logger *zap.Logger
}

// NewBuilder 创建 Builder。
func NewBuilder(calc *indicator.Calculator, logger *zap.Logger) *Builder {
	if calc == nil {
		calc = indicator.NewCalculator(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		calc:   calc,
		logger: logger,
	}
}

// Build 对当前窗口完整重算，window 应已包含本轮报价。
func (b *Builder) Build(snapshot exchange.MarketSnapshot, quote market.Quote, window []market.Quote, capacity int) Report {
	book := convertOrderBook(snapshot.OrderBook)
	res := b.calc.Compute(quote.Symbol, window, book)

	rep := Report{
		Symbol:      quote.Symbol,
		Market:      snapshot.Symbol,
		GeneratedAt: snapshot.RetrievedAt,
		Price: PriceInfo{
			Bid:    quote.Bid,
			Ask:    quote.Ask,
			Last:   quote.Last,
			Spread: quote.SpreadAbsolute,
		},
		Volume24h:       snapshot.Ticker.Volume24h,
		HistoryLength:   res.Rows,
		HistoryCapacity: capacity,
		Trend:           res.Trend,
		Candles:         res.Candles,
		Spread:          res.Spread,
		Profile:         res.Profile,
		Imbalance:       res.Imbalance,
		OrderBookLevels: len(book.Bids) + len(book.Asks),
		Signals:         res.Signals,
	}
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = quote.Timestamp
	}

	b.logger.Debug("分析报告生成完成",
		zap.String("symbol", rep.Symbol),
		zap.Int("rows", rep.HistoryLength),
		zap.String("trend", string(rep.Trend)),
		zap.Float64("imbalance_ratio", rep.Imbalance.ImbalanceRatio),
		zap.Int("signals", len(rep.Signals)),
	)

	return rep
}

// LatestCandles 返回最近 n 根平均K线，n<=0 时返回全部。
func (r Report) LatestCandles(n int) []indicator.HeikinAshiCandle {
	if n <= 0 || n >= len(r.Candles) {
		return r.Candles
	}
	return r.Candles[len(r.Candles)-n:]
}

func convertOrderBook(ob exchange.OrderBookSnapshot) indicator.OrderBook {
	return indicator.OrderBook{
		Bids: convertLevels(ob.Bids),
		Asks: convertLevels(ob.Asks),
	}
}

func convertLevels(levels []exchange.OrderBookLevel) []indicator.OrderLevel {
	out := make([]indicator.OrderLevel, 0, len(levels))
	for _, level := range levels {
		out = append(out, indicator.OrderLevel{Amount: level.Amount, Rate: level.Rate})
	}
	return out
}
