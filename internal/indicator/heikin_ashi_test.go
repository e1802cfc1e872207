package indicator

import (
	"reflect"
	"testing"
)

func fixtureSeries() Series {
	return Series{
		Open:  []float64{10, 12, 14, 11},
		High:  []float64{15, 14, 16, 13},
		Low:   []float64{9, 11, 13, 10},
		Close: []float64{12, 14, 11, 12},
	}
}

func TestHeikinAshi_FixtureValues(t *testing.T) {
	candles := HeikinAshi(fixtureSeries())

	if len(candles) != 4 {
		t.Fatalf("expected 4 candles, got %d", len(candles))
	}

	wantClose := []float64{11.5, 12.75, 13.5, 11.5}
	wantOpen := []float64{10, 10.75, 11.75, 12.625}
	wantHigh := []float64{15, 14, 16, 13}
	wantLow := []float64{9, 10.75, 11.75, 10}
	wantTrend := []Trend{TrendNeutral, TrendBullish, TrendBullish, TrendNeutral}

	for i, c := range candles {
		if c.HAClose != wantClose[i] {
			t.Errorf("row %d ha_close: got %v want %v", i, c.HAClose, wantClose[i])
		}
		if c.HAOpen != wantOpen[i] {
			t.Errorf("row %d ha_open: got %v want %v", i, c.HAOpen, wantOpen[i])
		}
		if c.HAHigh != wantHigh[i] {
			t.Errorf("row %d ha_high: got %v want %v", i, c.HAHigh, wantHigh[i])
		}
		if c.HALow != wantLow[i] {
			t.Errorf("row %d ha_low: got %v want %v", i, c.HALow, wantLow[i])
		}
		if c.Trend != wantTrend[i] {
			t.Errorf("row %d trend: got %s want %s", i, c.Trend, wantTrend[i])
		}
	}
}

func TestHeikinAshi_RecurrenceReplay(t *testing.T) {
	series := fixtureSeries()
	candles := HeikinAshi(series)

	if candles[0].HAOpen != series.Open[0] {
		t.Fatalf("ha_open[0] must equal open[0], got %v", candles[0].HAOpen)
	}
	for i := 1; i < len(candles); i++ {
		want := (candles[i-1].HAOpen + candles[i-1].HAClose) / 2
		if candles[i].HAOpen != want {
			t.Errorf("row %d: ha_open=%v, recurrence gives %v", i, candles[i].HAOpen, want)
		}
	}
}

func TestHeikinAshi_EveryRowLabelled(t *testing.T) {
	candles := HeikinAshi(fixtureSeries())
	for i, c := range candles {
		switch c.Trend {
		case TrendBullish, TrendBearish, TrendNeutral:
		default:
			t.Errorf("row %d has invalid trend %q", i, c.Trend)
		}
	}
}

func TestHeikinAshi_Idempotent(t *testing.T) {
	series := fixtureSeries()
	first := HeikinAshi(series)
	second := HeikinAshi(series)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated runs on the same window differ")
	}
}

func TestHeikinAshi_EmptyWindow(t *testing.T) {
	candles := HeikinAshi(Series{})
	if len(candles) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(candles))
	}
	if LatestTrend(candles) != TrendNeutral {
		t.Errorf("latest trend of empty result should be neutral")
	}
}

func TestHeikinAshi_SeedFollowsSlidingWindow(t *testing.T) {
	full := HeikinAshi(fixtureSeries())

	// 模拟最早一行被淘汰后的窗口
	slid := fixtureSeries()
	slid.Open = slid.Open[1:]
	slid.High = slid.High[1:]
	slid.Low = slid.Low[1:]
	slid.Close = slid.Close[1:]
	recomputed := HeikinAshi(slid)

	if recomputed[0].HAOpen != 12 {
		t.Fatalf("seed must restart from current first open, got %v", recomputed[0].HAOpen)
	}
	if recomputed[0].HAOpen == full[1].HAOpen {
		t.Fatalf("expected old row to shift after window slides")
	}
	if recomputed[0].HAClose != full[1].HAClose {
		t.Errorf("ha_close is row-local and must not change: got %v want %v", recomputed[0].HAClose, full[1].HAClose)
	}
}

func TestHeikinAshi_BearishWithoutUpperShadow(t *testing.T) {
	series := Series{
		Open:  []float64{20, 18},
		High:  []float64{20, 18},
		Low:   []float64{16, 14},
		Close: []float64{16, 14},
	}
	candles := HeikinAshi(series)

	// row0: ha_close=18, ha_open=20, ha_high=max(20,20,18)=20 == ha_open
	if candles[0].Trend != TrendBearish {
		t.Errorf("row 0: expected bearish, got %s", candles[0].Trend)
	}
	// row1: ha_open=(20+18)/2=19, ha_close=16, ha_high=max(18,19,16)=19 == ha_open
	if candles[1].Trend != TrendBearish {
		t.Errorf("row 1: expected bearish, got %s", candles[1].Trend)
	}
}
