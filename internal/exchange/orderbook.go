package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"crypto-monitor/internal/config"
)

// OrderBookClient 读取 CoinSpot 公开接口的挂单簿。
type OrderBookClient struct {
	baseURL    string
	depth      int
	httpClient *http.Client
	retry      *retrier
	logger     *zap.Logger
}

type openOrdersResponse struct {
	Status     string                   `json:"status"`
	Message    string                   `json:"message"`
	BuyOrders  []map[string]interface{} `json:"buyorders"`
	SellOrders []map[string]interface{} `json:"sellorders"`
}

// NewOrderBookClient 创建挂单簿客户端，httpClient 为空时按配置超时创建。
func NewOrderBookClient(cfg config.ExchangeConfig, httpClient *http.Client, logger *zap.Logger) *OrderBookClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OrderBookClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		depth:      cfg.OrderBookDepth,
		httpClient: httpClient,
		retry:      newRetrier(cfg.Retry, logger),
		logger:     logger,
	}
}

// FetchOrderBook 获取指定币种的买卖挂单，每侧最多保留 depth 档。
func (c *OrderBookClient) FetchOrderBook(ctx context.Context, coin string) (OrderBookSnapshot, error) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return OrderBookSnapshot{}, ErrEmptySymbol
	}

	url := fmt.Sprintf("%s/orders/open/%s", c.baseURL, coin)

	var payload openOrdersResponse
	err := c.retry.do(ctx, "fetch_open_orders", func() error {
		resp, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		payload = resp
		return nil
	})
	if err != nil {
		return OrderBookSnapshot{}, fmt.Errorf("获取挂单簿失败 %s: %w", coin, err)
	}

	if !strings.EqualFold(payload.Status, "ok") {
		return OrderBookSnapshot{}, fmt.Errorf("%w: %s", ErrAPIStatus, payload.Message)
	}

	bids, err := convertLevels(payload.BuyOrders, c.depth)
	if err != nil {
		return OrderBookSnapshot{}, fmt.Errorf("解析买单失败: %w", err)
	}
	asks, err := convertLevels(payload.SellOrders, c.depth)
	if err != nil {
		return OrderBookSnapshot{}, fmt.Errorf("解析卖单失败: %w", err)
	}

	c.logger.Debug("挂单簿获取完成",
		zap.String("coin", coin),
		zap.Int("bids", len(bids)),
		zap.Int("asks", len(asks)),
	)

	return OrderBookSnapshot{
		Coin:      coin,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (c *OrderBookClient) get(ctx context.Context, url string) (openOrdersResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return openOrdersResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return openOrdersResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return openOrdersResponse{}, &StatusError{Code: resp.StatusCode, URL: url}
	}

	var payload openOrdersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return openOrdersResponse{}, fmt.Errorf("解析响应失败: %w", err)
	}
	return payload, nil
}

// convertLevels 接口中的数值既可能是数字也可能是字符串。
func convertLevels(raw []map[string]interface{}, depth int) ([]OrderBookLevel, error) {
	if depth > 0 && len(raw) > depth {
		raw = raw[:depth]
	}

	levels := make([]OrderBookLevel, 0, len(raw))
	for i, item := range raw {
		amount, err := cast.ToFloat64E(item["amount"])
		if err != nil {
			return nil, fmt.Errorf("第 %d 档 amount 非法: %w", i, err)
		}
		rate, err := cast.ToFloat64E(item["rate"])
		if err != nil {
			return nil, fmt.Errorf("第 %d 档 rate 非法: %w", i, err)
		}
		levels = append(levels, OrderBookLevel{Amount: amount, Rate: rate})
	}
	return levels, nil
}
