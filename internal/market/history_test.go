package market

import (
	"errors"
	"testing"
	"time"
)

func TestHistoryStore_EvictsOldestAtCapacity(t *testing.T) {
	const capacity = 5
	store, err := NewHistoryStore(capacity)
	if err != nil {
		t.Fatalf("NewHistoryStore returned error: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < capacity+1; i++ {
		price := 100 + float64(i)
		store.Append("BTC", NewQuote("BTC", base.Add(time.Duration(i)*time.Minute), price, price+1, price))
	}

	window := store.History("BTC")
	if len(window) != capacity {
		t.Fatalf("expected %d records, got %d", capacity, len(window))
	}
	if window[0].Bid != 101 {
		t.Errorf("expected earliest record to be evicted, first bid=%v", window[0].Bid)
	}
	for i := 1; i < len(window); i++ {
		if !window[i].Timestamp.After(window[i-1].Timestamp) {
			t.Fatalf("window not chronological at %d", i)
		}
	}
	if last := window[len(window)-1]; last.Bid != 105 {
		t.Errorf("expected newest bid=105, got %v", last.Bid)
	}
}

func TestHistoryStore_WrapsRepeatedly(t *testing.T) {
	store, err := NewHistoryStore(3)
	if err != nil {
		t.Fatalf("NewHistoryStore returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		store.Append("ETH", NewQuote("ETH", time.Unix(int64(i), 0), float64(i), float64(i), float64(i)))
	}

	window := store.History("ETH")
	want := []float64{7, 8, 9}
	if len(window) != len(want) {
		t.Fatalf("unexpected length: got %d want %d", len(window), len(want))
	}
	for i, q := range window {
		if q.Last != want[i] {
			t.Errorf("position %d: got %v want %v", i, q.Last, want[i])
		}
	}
	if store.Len("ETH") != 3 {
		t.Errorf("expected Len=3, got %d", store.Len("ETH"))
	}
}

func TestHistoryStore_UnknownSymbolIsEmpty(t *testing.T) {
	store, err := NewHistoryStore(DefaultHistoryCapacity)
	if err != nil {
		t.Fatalf("NewHistoryStore returned error: %v", err)
	}

	window := store.History("DOGE")
	if window == nil || len(window) != 0 {
		t.Fatalf("expected empty non-nil window, got %v", window)
	}
	if store.Len("DOGE") != 0 {
		t.Errorf("expected Len=0 for unknown symbol")
	}
	if len(store.windows) != 0 {
		t.Errorf("reading must not create a window")
	}
}

func TestHistoryStore_SymbolsAreIsolated(t *testing.T) {
	store, err := NewHistoryStore(2)
	if err != nil {
		t.Fatalf("NewHistoryStore returned error: %v", err)
	}
	store.Append("XRP", NewQuote("XRP", time.Unix(1, 0), 0.5, 0.51, 0.505))
	store.Append("BTC", NewQuote("BTC", time.Unix(1, 0), 100, 101, 100.5))
	store.Append("BTC", NewQuote("BTC", time.Unix(2, 0), 102, 103, 102.5))
	store.Append("BTC", NewQuote("BTC", time.Unix(3, 0), 104, 105, 104.5))

	if got := store.Len("XRP"); got != 1 {
		t.Errorf("XRP window should hold 1 record, got %d", got)
	}
	if got := store.Len("BTC"); got != 2 {
		t.Errorf("BTC window should hold 2 records, got %d", got)
	}
	if len(store.windows) != 2 {
		t.Errorf("expected one window per symbol, got %d", len(store.windows))
	}
}

func TestHistoryStore_SnapshotIsCopy(t *testing.T) {
	store, err := NewHistoryStore(2)
	if err != nil {
		t.Fatalf("NewHistoryStore returned error: %v", err)
	}
	store.Append("BTC", NewQuote("BTC", time.Unix(1, 0), 100, 101, 100.5))

	window := store.History("BTC")
	window[0].Bid = -1

	if store.History("BTC")[0].Bid != 100 {
		t.Fatalf("mutating a snapshot must not change the store")
	}
}

func TestNewHistoryStore_RejectsInvalidCapacity(t *testing.T) {
	if _, err := NewHistoryStore(0); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestNewQuote_DerivesFields(t *testing.T) {
	q := NewQuote("BTC", time.Unix(0, 0), 100, 102, 101)

	if q.Open != 101 || q.Close != 101 {
		t.Errorf("open/close should equal last, got %v/%v", q.Open, q.Close)
	}
	if q.High != 102 || q.Low != 100 {
		t.Errorf("unexpected high/low: %v/%v", q.High, q.Low)
	}
	if q.SpreadAbsolute != 2 {
		t.Errorf("expected spread 2, got %v", q.SpreadAbsolute)
	}
	if q.SpreadPercentage != 2 {
		t.Errorf("expected spread percentage 2, got %v", q.SpreadPercentage)
	}
}

func TestNewQuote_ToleratesCrossedAndZeroBid(t *testing.T) {
	crossed := NewQuote("BTC", time.Unix(0, 0), 101, 100, 100.5)
	if crossed.SpreadAbsolute != -1 {
		t.Errorf("crossed quote should keep negative spread, got %v", crossed.SpreadAbsolute)
	}
	if crossed.High != 101 || crossed.Low != 100 {
		t.Errorf("unexpected high/low on crossed quote: %v/%v", crossed.High, crossed.Low)
	}

	zeroBid := NewQuote("BTC", time.Unix(0, 0), 0, 1, 0.5)
	if zeroBid.SpreadPercentage != 0 {
		t.Errorf("spread percentage must be 0 when bid <= 0, got %v", zeroBid.SpreadPercentage)
	}
}
