package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"crypto-monitor/internal/config"
	"crypto-monitor/internal/indicator"
	"crypto-monitor/internal/report"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// Renderer 将 Report 输出为终端文本。
type Renderer struct {
	out     io.Writer
	color   bool
	candles int
}

// NewRenderer 创建 Renderer，是否着色由 display.color 与输出是否为终端共同决定。
func NewRenderer(out io.Writer, cfg config.DisplayConfig) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{
		out:     out,
		color:   colorEnabled(cfg.Color, out),
		candles: cfg.CandlesShown,
	}
}

func colorEnabled(mode string, out io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render 输出一次轮询的完整分析结果。
func (r *Renderer) Render(rep report.Report, iteration, total int) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", r.paint(ansiBold+ansiCyan,
		fmt.Sprintf("=== %s | poll %d/%d | %s ===", rep.Market, iteration, total, rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))

	r.writePrice(&b, rep)
	r.writeCandles(&b, rep)
	r.writeSpread(&b, rep.Spread)
	r.writeProfile(&b, rep.Profile)
	r.writeImbalance(&b, rep)
	r.writeSignals(&b, rep.Signals)

	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return fmt.Errorf("写入终端输出失败: %w", err)
	}
	return nil
}

func (r *Renderer) writePrice(b *strings.Builder, rep report.Report) {
	fmt.Fprintf(b, "\n%s Price Information:\n", rep.Symbol)
	fmt.Fprintf(b, "Bid: %s\n", FormatPrice(rep.Price.Bid))
	fmt.Fprintf(b, "Ask: %s\n", FormatPrice(rep.Price.Ask))
	fmt.Fprintf(b, "Last: %s\n", FormatPrice(rep.Price.Last))
	fmt.Fprintf(b, "Spread: %s\n", FormatPrice(rep.Price.Spread))
	if rep.Volume24h > 0 {
		fmt.Fprintf(b, "24h Volume: %s\n", humanize.FormatFloat("#,###.####", rep.Volume24h))
	}
	fmt.Fprintf(b, "History: %d/%d quotes\n", rep.HistoryLength, rep.HistoryCapacity)
}

func (r *Renderer) writeCandles(b *strings.Builder, rep report.Report) {
	candles := rep.LatestCandles(r.candles)
	fmt.Fprintf(b, "\nHeikin-Ashi (trend: %s)\n", r.paintTrend(rep.Trend))
	if len(candles) == 0 {
		b.WriteString("No price history yet\n")
		return
	}

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tHA OPEN\tHA HIGH\tHA LOW\tHA CLOSE\tTREND")
	for _, c := range candles {
		ts := "-"
		if !c.Timestamp.IsZero() {
			ts = c.Timestamp.Format("15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n", ts, c.HAOpen, c.HAHigh, c.HALow, c.HAClose, c.Trend)
	}
	_ = tw.Flush()
}

func (r *Renderer) writeSpread(b *strings.Builder, stats *indicator.SpreadStats) {
	b.WriteString("\nSpread Analysis\n")
	if stats == nil {
		b.WriteString("No spread data available\n")
		return
	}

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Current:\t%s\t(%.4f%%)\n", FormatPrice(stats.CurrentSpread), stats.CurrentSpreadPercentage)
	fmt.Fprintf(tw, "Average:\t%s\t(%.4f%%)\n", FormatPrice(stats.AvgSpread), stats.AvgSpreadPercentage)
	fmt.Fprintf(tw, "Min / Max:\t%s / %s\t\n", FormatPrice(stats.MinSpread), FormatPrice(stats.MaxSpread))
	if stats.Volatility != nil {
		fmt.Fprintf(tw, "Volatility:\t%.6f\t\n", *stats.Volatility)
	} else {
		fmt.Fprintln(tw, "Volatility:\tn/a\t")
	}
	_ = tw.Flush()
	fmt.Fprintf(b, "Condition: %s - %s\n", r.paintCondition(stats.Condition), stats.Message)
}

func (r *Renderer) writeProfile(b *strings.Builder, profile *indicator.VolumeProfile) {
	b.WriteString("\nVolume Profile\n")
	if profile == nil {
		b.WriteString("No volume data available\n")
		return
	}

	unit := "volume"
	if profile.CountBased {
		unit = "rows"
	}

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PRICE LEVEL\t%s\t\n", strings.ToUpper(unit))
	for i, bin := range profile.Bins {
		marker := ""
		if i == profile.POCIndex && profile.POCVolume > 0 {
			marker = "<- POC"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", bin.Label, humanize.FormatFloat("#,###.##", bin.Volume), marker)
	}
	_ = tw.Flush()
	fmt.Fprintf(b, "Point of control: %s (%s %s)\n", profile.POC, humanize.FormatFloat("#,###.##", profile.POCVolume), unit)
}

func (r *Renderer) writeImbalance(b *strings.Builder, rep report.Report) {
	imb := rep.Imbalance
	b.WriteString("\nOrder Book\n")
	if rep.OrderBookLevels == 0 {
		b.WriteString("No open orders\n")
	}
	fmt.Fprintf(b, "Buy volume: %s\n", FormatPrice(imb.BuyVolume))
	fmt.Fprintf(b, "Sell volume: %s\n", FormatPrice(imb.SellVolume))
	fmt.Fprintf(b, "Imbalance: %.4f (%s)\n", imb.ImbalanceRatio, r.paintSide(imb.DominantSide))
}

func (r *Renderer) writeSignals(b *strings.Builder, signals []string) {
	b.WriteString("\nSignals\n")
	for _, s := range signals {
		fmt.Fprintf(b, "- %s\n", s)
	}
}

// FormatPrice 按 $1,234.56 的格式输出金额。
func FormatPrice(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func (r *Renderer) paint(code, text string) string {
	if !r.color {
		return text
	}
	return code + text + ansiReset
}

func (r *Renderer) paintTrend(t indicator.Trend) string {
	switch t {
	case indicator.TrendBullish:
		return r.paint(ansiGreen, string(t))
	case indicator.TrendBearish:
		return r.paint(ansiRed, string(t))
	default:
		return r.paint(ansiYellow, string(t))
	}
}

func (r *Renderer) paintCondition(c indicator.Condition) string {
	switch c {
	case indicator.ConditionTight:
		return r.paint(ansiGreen, string(c))
	case indicator.ConditionWide:
		return r.paint(ansiRed, string(c))
	default:
		return r.paint(ansiYellow, string(c))
	}
}

func (r *Renderer) paintSide(s indicator.Side) string {
	switch s {
	case indicator.SideBuy:
		return r.paint(ansiGreen, string(s))
	case indicator.SideSell:
		return r.paint(ansiRed, string(s))
	default:
		return r.paint(ansiYellow, string(s))
	}
}
