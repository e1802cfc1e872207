package exchange

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"crypto-monitor/internal/config"
)

// Client 通过 ccxt 获取 CoinSpot 行情并实现重试机制。
type Client struct {
	cfg      config.ExchangeConfig
	logger   *zap.Logger
	exchange *ccxt.Coinspot
	market   string
	retry    *retrier

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewClient 构造 CoinSpot 客户端，币种为空时返回 ErrEmptySymbol。
func NewClient(cfg config.ExchangeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Symbol))
	if cfg.Symbol == "" {
		return nil, ErrEmptySymbol
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
	}
	if cfg.Timeout > 0 {
		userConfig["timeout"] = cfg.Timeout.Milliseconds()
	}
	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.APISecret != "" {
		userConfig["secret"] = cfg.APISecret
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		exchange: ccxt.NewCoinspot(userConfig),
		market:   cfg.Market(),
		retry:    newRetrier(cfg.Retry, logger),
	}, nil
}

// Symbol 返回交易对，例如 BTC/AUD。
func (c *Client) Symbol() string {
	return c.market
}

// FetchTicker 获取最新买一、卖一与成交价。
func (c *Client) FetchTicker(ctx context.Context) (Ticker, error) {
	var raw ccxt.Ticker

	err := c.retry.do(ctx, "fetch_ticker", func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}

		result, err := c.exchange.FetchTicker(c.market)
		if err != nil {
			return err
		}

		raw = result
		return nil
	})
	if err != nil {
		return Ticker{}, fmt.Errorf("failed to fetch price for %s: %w", c.cfg.Symbol, err)
	}

	return convertTicker(c.market, raw)
}

func (c *Client) ensureMarketsLoaded(ctx context.Context) error {
	c.marketsMu.Lock()
	defer c.marketsMu.Unlock()

	if c.marketsLoaded {
		return nil
	}

	loadErr := c.retry.do(ctx, "load_markets", func() error {
		_, err := c.exchange.LoadMarkets()
		return err
	})
	if loadErr != nil {
		return loadErr
	}

	c.marketsLoaded = true
	c.logger.Info("已完成市场元数据加载", zap.String("symbol", c.market))
	return nil
}

func convertTicker(market string, t ccxt.Ticker) (Ticker, error) {
	bid, err := requirePrice("bid", t.Bid)
	if err != nil {
		return Ticker{}, err
	}
	ask, err := requirePrice("ask", t.Ask)
	if err != nil {
		return Ticker{}, err
	}
	last, err := requirePrice("last", t.Last)
	if err != nil {
		return Ticker{}, err
	}

	ts := time.Now().UTC()
	if t.Timestamp != nil && *t.Timestamp > 0 {
		ts = time.UnixMilli(*t.Timestamp).UTC()
	}

	var volume float64
	if t.BaseVolume != nil {
		volume = *t.BaseVolume
	}

	return Ticker{
		Market:    market,
		Bid:       bid,
		Ask:       ask,
		Last:      last,
		Volume24h: volume,
		Timestamp: ts,
	}, nil
}

func requirePrice(field string, value *float64) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidQuote, field)
	}
	v := *value
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%v", ErrInvalidQuote, field, v)
	}
	return v, nil
}
