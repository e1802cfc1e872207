package monitor

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"crypto-monitor/internal/indicator"
	"crypto-monitor/internal/report"
)

func TestMetrics_ObservePoll(t *testing.T) {
	m := NewMetrics()
	m.ObservePoll(10*time.Millisecond, nil)
	m.ObservePoll(20*time.Millisecond, nil)
	m.ObservePoll(5*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.polls); got != 2 {
		t.Errorf("expected 2 polls, got %v", got)
	}
	if got := testutil.ToFloat64(m.pollErrors); got != 1 {
		t.Errorf("expected 1 poll error, got %v", got)
	}
}

func TestMetrics_ObserveReport(t *testing.T) {
	m := NewMetrics()
	m.ObserveReport(report.Report{
		Symbol:        "BTC",
		HistoryLength: 7,
		Spread:        &indicator.SpreadStats{CurrentSpreadPercentage: 0.25},
		Imbalance:     indicator.OrderBookImbalance{ImbalanceRatio: -0.4},
	})

	if got := testutil.ToFloat64(m.historyLength.WithLabelValues("BTC")); got != 7 {
		t.Errorf("unexpected history length %v", got)
	}
	if got := testutil.ToFloat64(m.spreadPercent.WithLabelValues("BTC")); got != 0.25 {
		t.Errorf("unexpected spread %v", got)
	}
	if got := testutil.ToFloat64(m.imbalance.WithLabelValues("BTC")); got != -0.4 {
		t.Errorf("unexpected imbalance %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObservePoll(time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "crypto_monitor_polls_total 1") {
		t.Errorf("metrics output missing polls counter:\n%s", body)
	}
}
