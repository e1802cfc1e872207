package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crypto-monitor/internal/report"
)

const namespace = "crypto_monitor"

// Metrics 汇总轮询相关的 Prometheus 指标，使用独立 Registry。
type Metrics struct {
	registry *prometheus.Registry

	polls         prometheus.Counter
	pollErrors    prometheus.Counter
	pollLatency   prometheus.Histogram
	spreadPercent *prometheus.GaugeVec
	imbalance     *prometheus.GaugeVec
	historyLength *prometheus.GaugeVec
}

// NewMetrics 创建并注册全部指标。
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Completed poll cycles.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Poll cycles that failed.",
		}),
		pollLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_latency_seconds",
			Help:      "Duration of a poll cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		spreadPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spread_percentage",
			Help:      "Latest bid/ask spread as a percentage of bid.",
		}, []string{"symbol"}),
		imbalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "order_book_imbalance_ratio",
			Help:      "Latest order book imbalance ratio in [-1, 1].",
		}, []string{"symbol"}),
		historyLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_length",
			Help:      "Quotes currently retained per symbol.",
		}, []string{"symbol"}),
	}

	m.registry.MustRegister(
		m.polls,
		m.pollErrors,
		m.pollLatency,
		m.spreadPercent,
		m.imbalance,
		m.historyLength,
	)
	return m
}

// ObservePoll 记录一次轮询的耗时与结果。
func (m *Metrics) ObservePoll(d time.Duration, err error) {
	m.pollLatency.Observe(d.Seconds())
	if err != nil {
		m.pollErrors.Inc()
		return
	}
	m.polls.Inc()
}

// ObserveReport 更新最新报告相关的指标。
func (m *Metrics) ObserveReport(rep report.Report) {
	m.historyLength.WithLabelValues(rep.Symbol).Set(float64(rep.HistoryLength))
	m.imbalance.WithLabelValues(rep.Symbol).Set(rep.Imbalance.ImbalanceRatio)
	if rep.Spread != nil {
		m.spreadPercent.WithLabelValues(rep.Symbol).Set(rep.Spread.CurrentSpreadPercentage)
	}
}

// Handler 返回 /metrics 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
