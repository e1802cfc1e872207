package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Exchange  ExchangeConfig  `mapstructure:"exchange"`
	History   HistoryConfig   `mapstructure:"history"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Display   DisplayConfig   `mapstructure:"display"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// ExchangeConfig 描述行情源连接信息。
type ExchangeConfig struct {
	Symbol           string        `mapstructure:"symbol"`
	QuoteCurrency    string        `mapstructure:"quote_currency"`
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	APISecret        string        `mapstructure:"api_secret"`
	Timeout          time.Duration `mapstructure:"timeout"`
	OrderBookEnabled bool          `mapstructure:"order_book_enabled"`
	OrderBookDepth   int           `mapstructure:"order_book_depth"`
	Retry            RetryConfig   `mapstructure:"retry"`
}

// Market 返回统一格式的交易对，例如 BTC/AUD。
func (c ExchangeConfig) Market() string {
	return strings.ToUpper(c.Symbol) + "/" + strings.ToUpper(c.QuoteCurrency)
}

// RetryConfig 统一控制重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// HistoryConfig 控制滚动历史窗口。
type HistoryConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// SpreadThreshold 为单个币种的点差分档阈值（单位：%）。
type SpreadThreshold struct {
	Tight  float64 `mapstructure:"tight"`
	Normal float64 `mapstructure:"normal"`
	Wide   float64 `mapstructure:"wide"`
}

// AnalysisConfig 控制分析引擎参数。
type AnalysisConfig struct {
	PriceLevels      int                        `mapstructure:"price_levels"`
	SpreadThresholds map[string]SpreadThreshold `mapstructure:"spread_thresholds"`
}

// DisplayConfig 控制终端输出。
type DisplayConfig struct {
	Color        string `mapstructure:"color"`
	CandlesShown int    `mapstructure:"candles_shown"`
}

// DatabaseConfig 管理分析日志数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string        `mapstructure:"level"`
	Encoding         string        `mapstructure:"encoding"`
	Development      bool          `mapstructure:"development"`
	OutputPaths      []string      `mapstructure:"output_paths"`
	ErrorOutputPaths []string      `mapstructure:"error_output_paths"`
	File             LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 控制滚动日志文件，Path 为空时不写文件。
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MonitorConfig 控制监控日志与 HTTP 接口。
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// SchedulerConfig 控制轮询节奏。
type SchedulerConfig struct {
	LoopInterval time.Duration `mapstructure:"loop_interval"`
	Iterations   int           `mapstructure:"iterations"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if strings.TrimSpace(c.Exchange.Symbol) == "" {
		err = multierr.Append(err, errors.New("exchange.symbol 不能为空"))
	}
	if strings.TrimSpace(c.Exchange.QuoteCurrency) == "" {
		err = multierr.Append(err, errors.New("exchange.quote_currency 不能为空"))
	}
	if c.Exchange.OrderBookEnabled && c.Exchange.BaseURL == "" {
		err = multierr.Append(err, errors.New("exchange.base_url 不能为空"))
	}
	if c.Exchange.Timeout <= 0 {
		err = multierr.Append(err, errors.New("exchange.timeout 必须大于0"))
	}
	if c.Exchange.OrderBookDepth <= 0 {
		err = multierr.Append(err, errors.New("exchange.order_book_depth 必须大于0"))
	}
	if c.Exchange.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("exchange.retry.max_attempts 必须大于0"))
	}
	if c.Exchange.Retry.MinDelay <= 0 || c.Exchange.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("exchange.retry.delay 必须为正"))
	}
	if c.Exchange.Retry.MinDelay > c.Exchange.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("exchange.retry.min_delay 不能大于 max_delay"))
	}
	if c.History.Capacity <= 0 {
		err = multierr.Append(err, errors.New("history.capacity 必须大于0"))
	}
	if c.Analysis.PriceLevels <= 0 {
		err = multierr.Append(err, errors.New("analysis.price_levels 必须大于0"))
	}
	for symbol, th := range c.Analysis.SpreadThresholds {
		if th.Tight < 0 || th.Tight > th.Normal || th.Normal > th.Wide {
			err = multierr.Append(err, fmt.Errorf("analysis.spread_thresholds.%s 必须满足 0 <= tight <= normal <= wide", symbol))
		}
	}
	switch strings.ToLower(c.Display.Color) {
	case "auto", "always", "never":
	default:
		err = multierr.Append(err, errors.New("display.color 仅支持 auto/always/never"))
	}
	if c.Display.CandlesShown < 0 {
		err = multierr.Append(err, errors.New("display.candles_shown 不能为负"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}
	if c.Logging.File.Path != "" && c.Logging.File.MaxSizeMB <= 0 {
		err = multierr.Append(err, errors.New("logging.file.max_size_mb 必须大于0"))
	}
	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		err = multierr.Append(err, errors.New("monitor.port 必须位于[0,65535]"))
	}
	if c.Scheduler.LoopInterval <= 0 {
		err = multierr.Append(err, errors.New("scheduler.loop_interval 必须大于0"))
	}
	if c.Scheduler.Iterations <= 0 {
		err = multierr.Append(err, errors.New("scheduler.iterations 必须大于0"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
