package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"crypto-monitor/internal/config"
	"crypto-monitor/internal/indicator"
	"crypto-monitor/internal/report"
	"crypto-monitor/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLite(config.DatabaseConfig{InMemory: true})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc, err := NewService(st, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestNewService_RequiresStore(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestService_RecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := uuid.Parse(svc.SessionID()); err != nil {
		t.Fatalf("session id is not a uuid: %v", err)
	}

	svc.RecordAnalysis(ctx, 1, report.Report{
		Symbol:  "BTC",
		Trend:   indicator.TrendBullish,
		Signals: []string{indicator.NoSignal},
	})
	svc.RecordError(ctx, "轮询失败", errors.New("timeout"), map[string]interface{}{"iteration": 2})

	all, err := svc.ListEvents(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].Type != EventError || all[1].Type != EventAnalysis {
		t.Errorf("events must be newest first, got %s, %s", all[0].Type, all[1].Type)
	}
	for _, ev := range all {
		if ev.SessionID != svc.SessionID() {
			t.Errorf("unexpected session %q", ev.SessionID)
		}
	}

	analyses, err := svc.ListEvents(ctx, EventAnalysis, 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(analyses) != 1 {
		t.Fatalf("expected 1 analysis event, got %d", len(analyses))
	}

	raw, ok := analyses[0].Payload.(json.RawMessage)
	if !ok {
		t.Fatalf("payload should be raw JSON, got %T", analyses[0].Payload)
	}
	var payload AnalysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Iteration != 1 || payload.Report.Symbol != "BTC" || payload.Report.Trend != indicator.TrendBullish {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestService_ListEventsLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		svc.RecordAnalysis(ctx, i, report.Report{Symbol: "XRP"})
	}

	events, err := svc.ListEvents(ctx, EventAnalysis, 3)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
}
