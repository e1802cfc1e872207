package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crypto-monitor/internal/exchange"
	"crypto-monitor/internal/market"
	"crypto-monitor/internal/monitor"
	"crypto-monitor/internal/report"
)

type snapshotSource interface {
	GetSnapshot(ctx context.Context) (exchange.MarketSnapshot, error)
}

type reportRenderer interface {
	Render(rep report.Report, iteration, total int) error
}

// poller 执行单轮：拉取 → 写入历史 → 全窗口重算 → 输出 → 记录。
type poller struct {
	symbol   string
	source   snapshotSource
	history  *market.HistoryStore
	builder  *report.Builder
	renderer reportRenderer
	journal  *monitor.Service
	metrics  *monitor.Metrics
	logger   *zap.Logger
}

func (p *poller) Tick(ctx context.Context, iteration, total int) (report.Report, error) {
	start := time.Now()

	rep, err := p.poll(ctx, iteration, total)
	if p.metrics != nil {
		p.metrics.ObservePoll(time.Since(start), err)
	}
	if err != nil {
		if p.journal != nil {
			p.journal.RecordError(ctx, "轮询失败", err, map[string]interface{}{
				"symbol":    p.symbol,
				"iteration": iteration,
			})
		}
		return report.Report{}, err
	}

	if p.journal != nil {
		p.journal.RecordAnalysis(ctx, iteration, rep)
	}
	if p.metrics != nil {
		p.metrics.ObserveReport(rep)
	}

	p.logger.Info("轮询完成",
		zap.String("symbol", p.symbol),
		zap.Int("iteration", iteration),
		zap.Int("history", rep.HistoryLength),
		zap.String("trend", string(rep.Trend)),
		zap.Duration("latency", time.Since(start)),
	)
	return rep, nil
}

func (p *poller) poll(ctx context.Context, iteration, total int) (report.Report, error) {
	snapshot, err := p.source.GetSnapshot(ctx)
	if err != nil {
		return report.Report{}, err
	}

	ts := snapshot.RetrievedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	t := snapshot.Ticker
	// 报价时间取本地拉取时间，交易所时间仅用于排查时钟偏差
	p.logger.Debug("收到行情",
		zap.String("symbol", p.symbol),
		zap.Time("retrieved_at", ts),
		zap.Time("exchange_ts", t.Timestamp),
		zap.Duration("skew", ts.Sub(t.Timestamp)),
	)
	quote := market.NewQuote(p.symbol, ts, t.Bid, t.Ask, t.Last)

	p.history.Append(p.symbol, quote)
	window := p.history.History(p.symbol)

	rep := p.builder.Build(snapshot, quote, window, p.history.Capacity())

	if err := p.renderer.Render(rep, iteration, total); err != nil {
		return report.Report{}, fmt.Errorf("输出分析结果失败: %w", err)
	}
	return rep, nil
}
