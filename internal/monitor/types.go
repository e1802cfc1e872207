package monitor

import (
	"time"

	"crypto-monitor/internal/report"
)

// EventType 表示监控事件类型。
type EventType string

const (
	EventAnalysis EventType = "analysis"
	EventError    EventType = "error"
)

// Event 封装通用监控事件。
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AnalysisPayload 记录一次轮询的分析报告。
type AnalysisPayload struct {
	Iteration int           `json:"iteration"`
	Report    report.Report `json:"report"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}
