package exchange

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TickerFetcher 抽象行情获取，便于测试替换。
type TickerFetcher interface {
	Symbol() string
	FetchTicker(ctx context.Context) (Ticker, error)
}

// OrderBookFetcher 抽象挂单簿获取。
type OrderBookFetcher interface {
	FetchOrderBook(ctx context.Context, coin string) (OrderBookSnapshot, error)
}

// MarketDataService 聚合行情及挂单簿数据获取。
type MarketDataService struct {
	ticker TickerFetcher
	book   OrderBookFetcher
	coin   string
	logger *zap.Logger
}

// NewMarketDataService 创建市场数据服务，book 为空时不拉取挂单簿。
func NewMarketDataService(ticker TickerFetcher, book OrderBookFetcher, coin string, logger *zap.Logger) *MarketDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketDataService{
		ticker: ticker,
		book:   book,
		coin:   coin,
		logger: logger,
	}
}

// GetSnapshot 并发拉取行情与挂单簿，任一失败则整体失败。
func (s *MarketDataService) GetSnapshot(ctx context.Context) (MarketSnapshot, error) {
	var (
		ticker    Ticker
		orderBook OrderBookSnapshot
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := s.ticker.FetchTicker(groupCtx)
		if err != nil {
			return err
		}
		ticker = data
		return nil
	})

	if s.book != nil {
		group.Go(func() error {
			book, err := s.book.FetchOrderBook(groupCtx, s.coin)
			if err != nil {
				return err
			}
			orderBook = book
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return MarketSnapshot{}, err
	}

	snapshot := MarketSnapshot{
		Symbol:      s.ticker.Symbol(),
		Ticker:      ticker,
		OrderBook:   orderBook,
		RetrievedAt: time.Now().UTC(),
	}

	s.logger.Debug("市场数据快照获取完成",
		zap.String("symbol", snapshot.Symbol),
		zap.Time("retrieved_at", snapshot.RetrievedAt),
		zap.Float64("bid", ticker.Bid),
		zap.Float64("ask", ticker.Ask),
		zap.Int("order_book_bids", len(orderBook.Bids)),
		zap.Int("order_book_asks", len(orderBook.Asks)),
	)

	return snapshot, nil
}
