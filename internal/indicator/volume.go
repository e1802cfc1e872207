package indicator

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultPriceLevels 为成交量分布默认的价格分档数。
	DefaultPriceLevels = 10
	// imbalanceThreshold 为判定买卖主导的失衡比阈值。
	imbalanceThreshold = 0.2
	// concentrationFactor 为判定成交量集中的倍数。
	concentrationFactor = 2.0
	// minLabelDecimals 与 maxLabelDecimals 限定区间标签的小数位数。
	minLabelDecimals = 2
	maxLabelDecimals = 10
)

// NoSignal 在没有任何条件触发时作为唯一信号返回。
const NoSignal = "No significant volume signals"

// ErrInvalidPriceLevels 表示价格分档数不是正数。
var ErrInvalidPriceLevels = errors.New("indicator: price levels must be positive")

// Side 表示盘口主导方向。
type Side string

const (
	SideBuy     Side = "buy"
	SideSell    Side = "sell"
	SideNeutral Side = "neutral"
)

// OrderLevel 为订单簿中的一档挂单。
type OrderLevel struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

// OrderBookImbalance 描述买卖盘名义金额的失衡程度。
type OrderBookImbalance struct {
	BuyVolume      float64 `json:"buy_volume"`
	SellVolume     float64 `json:"sell_volume"`
	ImbalanceRatio float64 `json:"imbalance_ratio"`
	DominantSide   Side    `json:"dominant_side"`
}

// PriceBin 为成交量分布中的一个价格区间 [Low, High)。
type PriceBin struct {
	Label  string  `json:"label"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Volume float64 `json:"volume"`
}

// VolumeProfile 为按价格分档的成交量分布。
type VolumeProfile struct {
	PriceMin  float64    `json:"price_min"`
	PriceMax  float64    `json:"price_max"`
	BinWidth  float64    `json:"bin_width"`
	Bins      []PriceBin `json:"bins"`
	POC       string     `json:"poc"`
	POCIndex  int        `json:"poc_index"`
	POCVolume float64    `json:"poc_volume"`
	// CountBased 为 true 时各档数值为行数而非成交量。
	CountBased bool `json:"count_based"`
}

// VolumeProfiler 计算成交量分布与订单簿失衡。
type VolumeProfiler struct {
	priceLevels int
}

// NewVolumeProfiler 创建分档数为 priceLevels 的分析器。
func NewVolumeProfiler(priceLevels int) (*VolumeProfiler, error) {
	if priceLevels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriceLevels, priceLevels)
	}
	return &VolumeProfiler{priceLevels: priceLevels}, nil
}

// AnalyzeOrderBook 计算买卖盘名义金额（Σ amount×rate）及失衡比。
// 任一侧为空时返回中性结果。
func AnalyzeOrderBook(buys, sells []OrderLevel) OrderBookImbalance {
	if len(buys) == 0 || len(sells) == 0 {
		return OrderBookImbalance{DominantSide: SideNeutral}
	}

	buyVolume := notional(buys)
	sellVolume := notional(sells)
	ratio := SafeDivide(buyVolume-sellVolume, buyVolume+sellVolume)

	side := SideNeutral
	switch {
	case ratio > imbalanceThreshold:
		side = SideBuy
	case ratio < -imbalanceThreshold:
		side = SideSell
	}

	return OrderBookImbalance{
		BuyVolume:      buyVolume,
		SellVolume:     sellVolume,
		ImbalanceRatio: ratio,
		DominantSide:   side,
	}
}

func notional(levels []OrderLevel) float64 {
	total := 0.0
	for _, level := range levels {
		total += level.Amount * level.Rate
	}
	return total
}

// Profile 按价格区间统计成交量，窗口为空时 ok 为 false。
//
// 一行仅当 low >= 区间下沿且 high < 区间上沿时计入该区间；上沿为开区间，
// 因此触及窗口最高价的行不会落入任何区间。价格区间为0时所有区间收缩到同一点。
func (p *VolumeProfiler) Profile(series Series) (VolumeProfile, bool) {
	if series.Len() == 0 {
		return VolumeProfile{}, false
	}

	priceMin, _ := extrema(series.Low)
	_, priceMax := extrema(series.High)
	width := 0.0
	if priceMax > priceMin {
		width = (priceMax - priceMin) / float64(p.priceLevels)
	}

	decimals := labelDecimals(width, priceMin)
	bins := make([]PriceBin, p.priceLevels)
	for i := range bins {
		low := priceMin + float64(i)*width
		high := low + width
		bins[i] = PriceBin{
			Label: fmt.Sprintf("%.*f-%.*f", decimals, low, decimals, high),
			Low:   low,
			High:  high,
		}
	}

	for row := 0; row < series.Len(); row++ {
		low, high := series.Low[row], series.High[row]
		weight := 1.0
		if series.HasVolume {
			weight = series.Volume[row]
		}
		for i := range bins {
			if low >= bins[i].Low && high < bins[i].High {
				bins[i].Volume += weight
			}
		}
	}

	poc := 0
	for i := 1; i < len(bins); i++ {
		if bins[i].Volume > bins[poc].Volume {
			poc = i
		}
	}

	return VolumeProfile{
		PriceMin:   priceMin,
		PriceMax:   priceMax,
		BinWidth:   width,
		Bins:       bins,
		POC:        bins[poc].Label,
		POCIndex:   poc,
		POCVolume:  bins[poc].Volume,
		CountBased: !series.HasVolume,
	}, true
}

// labelDecimals 保证相邻区间边界在标签中可区分：步长取区间宽度，
// 宽度为0时取价格本身。
func labelDecimals(width, price float64) int {
	step := width
	if step <= 0 {
		step = math.Abs(price)
	}
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return minLabelDecimals
	}
	decimals := int(math.Ceil(-math.Log10(step))) + 1
	switch {
	case decimals < minLabelDecimals:
		return minLabelDecimals
	case decimals > maxLabelDecimals:
		return maxLabelDecimals
	}
	return decimals
}

// Signals 根据失衡比与成交量集中度生成文字信号，无触发时返回 NoSignal。
func Signals(imbalance OrderBookImbalance, profile VolumeProfile) []string {
	signals := make([]string, 0, 2)

	switch {
	case imbalance.ImbalanceRatio > imbalanceThreshold:
		signals = append(signals, fmt.Sprintf("Strong buying pressure (imbalance ratio %.2f)", imbalance.ImbalanceRatio))
	case imbalance.ImbalanceRatio < -imbalanceThreshold:
		signals = append(signals, fmt.Sprintf("Strong selling pressure (imbalance ratio %.2f)", imbalance.ImbalanceRatio))
	}

	if len(profile.Bins) > 0 {
		volumes := make([]float64, len(profile.Bins))
		for i, bin := range profile.Bins {
			volumes[i] = bin.Volume
		}
		_, maxVolume := extrema(volumes)
		if maxVolume > concentrationFactor*mean(volumes) {
			signals = append(signals, fmt.Sprintf("High volume concentration at price level %s", profile.POC))
		}
	}

	if len(signals) == 0 {
		signals = append(signals, NoSignal)
	}
	return signals
}
