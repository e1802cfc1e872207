package indicator

import (
	"math"
	"time"

	"crypto-monitor/internal/market"
)

// Series 将报价窗口拆分为便于指标计算的列序列。
type Series struct {
	Timestamps       []time.Time
	Open             []float64
	High             []float64
	Low              []float64
	Close            []float64
	Volume           []float64
	SpreadAbsolute   []float64
	SpreadPercentage []float64
	// HasVolume 表示窗口中至少有一行携带成交量，否则按行计数。
	HasVolume bool
}

// NewSeries 从报价窗口创建 Series，保持输入的时间顺序。
func NewSeries(quotes []market.Quote) Series {
	length := len(quotes)
	series := Series{
		Timestamps:       make([]time.Time, length),
		Open:             make([]float64, length),
		High:             make([]float64, length),
		Low:              make([]float64, length),
		Close:            make([]float64, length),
		Volume:           make([]float64, length),
		SpreadAbsolute:   make([]float64, length),
		SpreadPercentage: make([]float64, length),
	}

	for i := 0; i < length; i++ {
		q := quotes[i]
		series.Timestamps[i] = q.Timestamp.UTC()
		series.Open[i] = q.Open
		series.High[i] = q.High
		series.Low[i] = q.Low
		series.Close[i] = q.Close
		series.SpreadAbsolute[i] = q.SpreadAbsolute
		series.SpreadPercentage[i] = q.SpreadPercentage
		if q.HasVolume {
			series.Volume[i] = q.Volume
			series.HasVolume = true
		}
	}

	return series
}

// Len 返回序列长度。
func (s Series) Len() int {
	return len(s.Close)
}

// Last 返回序列最后一个值，若为空则返回 NaN。
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// SafeDivide 除法保护，除数为0时返回0。
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func extrema(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
