package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "crypto"
)

// flagKeys 将命令行参数映射到配置键。
var flagKeys = map[string]string{
	"coin":       "exchange.symbol",
	"iterations": "scheduler.iterations",
	"interval":   "scheduler.loop_interval",
	"history":    "history.capacity",
	"levels":     "analysis.price_levels",
}

// NewFlagSet 注册命令行参数。
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "配置文件路径，默认使用 "+defaultConfigPath)
	flags.StringP("coin", "c", "BTC", "Cryptocurrency symbol (e.g., BTC, XRP)")
	flags.IntP("iterations", "n", 10, "Number of poll cycles before exiting")
	flags.DurationP("interval", "i", 0, "Delay between poll cycles (e.g. 30s)")
	flags.IntP("history", "H", 0, "Quotes retained per symbol")
	flags.IntP("levels", "l", 0, "Price bins of the volume profile")
	return flags
}

// Load 读取配置文件并结合环境变量、命令行参数返回 Config。
// 未显式指定路径且默认文件不存在时仅使用默认值。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		switch {
		case missing && explicit:
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		case !missing:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Exchange.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Exchange.Symbol))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		// 仅绑定用户显式设置的参数，避免零值覆盖配置文件
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("绑定命令行参数 %s 失败: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("exchange.symbol", "BTC")
	v.SetDefault("exchange.quote_currency", "AUD")
	v.SetDefault("exchange.base_url", "https://www.coinspot.com.au/pubapi/v2")
	v.SetDefault("exchange.api_key", "")
	v.SetDefault("exchange.api_secret", "")
	v.SetDefault("exchange.timeout", "10s")
	v.SetDefault("exchange.order_book_enabled", true)
	v.SetDefault("exchange.order_book_depth", 20)
	v.SetDefault("exchange.retry.max_attempts", 3)
	v.SetDefault("exchange.retry.min_delay", "500ms")
	v.SetDefault("exchange.retry.max_delay", "5s")

	v.SetDefault("history.capacity", 100)

	v.SetDefault("analysis.price_levels", 10)

	v.SetDefault("display.color", "auto")
	v.SetDefault("display.candles_shown", 5)

	v.SetDefault("database.path", "data/crypto_monitor.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "0s")
	v.SetDefault("database.in_memory", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.output_paths", []string{"stderr"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size_mb", 50)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 7)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.port", 0)

	v.SetDefault("scheduler.loop_interval", "30s")
	v.SetDefault("scheduler.iterations", 10)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
