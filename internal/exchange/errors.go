package exchange

import (
	"errors"
	"fmt"
	"net/http"

	ccxt "github.com/ccxt/ccxt/go/v4"
)

var (
	// ErrMaintenance 表示交易所处于维护状态，本轮应直接失败。
	ErrMaintenance = errors.New("exchange on maintenance")
	// ErrEmptySymbol 表示未提供币种。
	ErrEmptySymbol = errors.New("coin symbol cannot be empty")
	// ErrInvalidQuote 表示行情缺少价格或价格非法。
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrAPIStatus 表示接口返回了非 ok 状态。
	ErrAPIStatus = errors.New("API error")
)

// StatusError 表示 HTTP 层面的非 2xx 响应。
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// IsRetryable 判断错误是否可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return true
		default:
			return false
		}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}

	return false
}
