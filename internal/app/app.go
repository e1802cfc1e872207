package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"crypto-monitor/internal/config"
	"crypto-monitor/internal/display"
	"crypto-monitor/internal/exchange"
	"crypto-monitor/internal/indicator"
	"crypto-monitor/internal/market"
	"crypto-monitor/internal/monitor"
	"crypto-monitor/internal/report"
	"crypto-monitor/internal/store"
)

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	out    io.Writer
}

// New 创建 App 实例，out 为终端输出目标。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store, out io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		out:    out,
	}
}

// Run 执行 scheduler.iterations 轮轮询，遇到第一个错误即停止。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("行情监控已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("market", a.cfg.Exchange.Market()),
		zap.Int("iterations", a.cfg.Scheduler.Iterations),
		zap.Duration("interval", a.cfg.Scheduler.LoopInterval),
	)

	p, err := a.newPoller(ctx)
	if err != nil {
		return err
	}

	return runLoop(ctx, p, a.cfg.Scheduler, a.logger)
}

func (a *App) newPoller(ctx context.Context) (*poller, error) {
	client, err := exchange.NewClient(a.cfg.Exchange, a.logger)
	if err != nil {
		return nil, fmt.Errorf("初始化行情客户端失败: %w", err)
	}

	var book exchange.OrderBookFetcher
	if a.cfg.Exchange.OrderBookEnabled {
		book = exchange.NewOrderBookClient(a.cfg.Exchange, nil, a.logger)
	}
	source := exchange.NewMarketDataService(client, book, a.cfg.Exchange.Symbol, a.logger)

	history, err := market.NewHistoryStore(a.cfg.History.Capacity)
	if err != nil {
		return nil, fmt.Errorf("初始化历史窗口失败: %w", err)
	}

	profiler, err := indicator.NewVolumeProfiler(a.cfg.Analysis.PriceLevels)
	if err != nil {
		return nil, fmt.Errorf("初始化成交量分析失败: %w", err)
	}
	spread := indicator.NewSpreadAnalyzer(spreadOverrides(a.cfg.Analysis.SpreadThresholds))
	builder := report.NewBuilder(indicator.NewCalculator(spread, profiler), a.logger)

	p := &poller{
		symbol:   a.cfg.Exchange.Symbol,
		source:   source,
		history:  history,
		builder:  builder,
		renderer: display.NewRenderer(a.out, a.cfg.Display),
		logger:   a.logger,
	}

	if a.cfg.Monitor.Enabled && a.store != nil {
		journal, err := monitor.NewService(a.store, a.logger)
		if err != nil {
			return nil, fmt.Errorf("初始化监控服务失败: %w", err)
		}
		p.journal = journal
		p.metrics = monitor.NewMetrics()

		if a.cfg.Monitor.Port > 0 {
			if err := startMonitorServer(ctx, journal, p.metrics, a.cfg.Monitor.Port, a.logger); err != nil {
				return nil, err
			}
		}
		a.logger.Info("分析日志已启用",
			zap.String("session_id", journal.SessionID()),
			zap.Bool("in_memory", a.store.InMemory()),
		)
	}

	return p, nil
}

type ticker interface {
	Tick(ctx context.Context, iteration, total int) (report.Report, error)
}

// runLoop 每轮之间等待固定间隔，最后一轮后立即返回。
func runLoop(ctx context.Context, t ticker, cfg config.SchedulerConfig, logger *zap.Logger) error {
	total := cfg.Iterations
	interval := cfg.LoopInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	for i := 1; i <= total; i++ {
		if _, err := t.Tick(ctx, i, total); err != nil {
			// 轮询途中收到退出信号与等待期间收到同样视为正常退出
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				logger.Info("系统收到退出信号，正在停止", zap.Int("completed", i-1))
				return nil
			}
			return fmt.Errorf("第 %d 轮轮询失败: %w", i, err)
		}
		if i == total {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("系统异常退出: %w", err)
			}
			logger.Info("系统收到退出信号，正在停止", zap.Int("completed", i))
			return nil
		case <-timer.C:
		}
	}

	logger.Info("轮询结束", zap.Int("iterations", total))
	return nil
}

func spreadOverrides(in map[string]config.SpreadThreshold) map[string]indicator.Thresholds {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]indicator.Thresholds, len(in))
	for symbol, th := range in {
		out[symbol] = indicator.Thresholds{Tight: th.Tight, Normal: th.Normal, Wide: th.Wide}
	}
	return out
}
