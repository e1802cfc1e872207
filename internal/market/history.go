package market

import "errors"

// DefaultHistoryCapacity 为每个币种默认保留的报价数量。
const DefaultHistoryCapacity = 100

// ErrInvalidCapacity 表示历史容量不是正数。
var ErrInvalidCapacity = errors.New("market: history capacity must be positive")

// HistoryStore 按币种维护定长、按时间排序的报价环形缓冲区。
// 由轮询循环独占使用，非并发安全。
type HistoryStore struct {
	capacity int
	windows  map[string]*ring
}

// NewHistoryStore 创建容量为 capacity 的历史存储。
func NewHistoryStore(capacity int) (*HistoryStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &HistoryStore{
		capacity: capacity,
		windows:  make(map[string]*ring),
	}, nil
}

// Capacity 返回每个币种窗口的容量。
func (s *HistoryStore) Capacity() int {
	return s.capacity
}

// Append 追加一条报价；窗口已满时先淘汰最早的一条。
func (s *HistoryStore) Append(symbol string, quote Quote) {
	w, ok := s.windows[symbol]
	if !ok {
		w = newRing(s.capacity)
		s.windows[symbol] = w
	}
	w.push(quote)
}

// History 按时间升序返回当前窗口的副本，未知币种返回空切片。
func (s *HistoryStore) History(symbol string) []Quote {
	w, ok := s.windows[symbol]
	if !ok {
		return []Quote{}
	}
	return w.snapshot()
}

// Len 返回币种当前保留的报价数量。
func (s *HistoryStore) Len(symbol string) int {
	w, ok := s.windows[symbol]
	if !ok {
		return 0
	}
	return w.size
}

type ring struct {
	buf   []Quote
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Quote, capacity)}
}

func (r *ring) push(q Quote) {
	capacity := len(r.buf)
	if r.size < capacity {
		r.buf[(r.start+r.size)%capacity] = q
		r.size++
		return
	}
	// 覆盖最旧元素并前移起点
	r.buf[r.start] = q
	r.start = (r.start + 1) % capacity
}

func (r *ring) snapshot() []Quote {
	out := make([]Quote, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
