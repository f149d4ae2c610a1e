package logging

import (
	"sync"
	"time"
)

// ToolMetrics tracks metrics for a single tool.
type ToolMetrics struct {
	Calls     int           `json:"calls"`
	Errors    int           `json:"errors"`
	TotalTime time.Duration `json:"total_time_ms"`
}

// Metrics collects per-session counters. They are flushed into the
// session.end event when the logger closes.
type Metrics struct {
	mu sync.Mutex

	SessionStart time.Time
	Runs         int
	Turns        int
	GatewayErrs  int
	Truncations  int
	Tools        map[string]*ToolMetrics
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionStart: time.Now(),
		Tools:        make(map[string]*ToolMetrics),
	}
}

// RecordRun counts one Agent.Run invocation.
func (m *Metrics) RecordRun() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
}

// RecordTurn counts one gateway call and whether it failed.
func (m *Metrics) RecordTurn(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Turns++
	if err != nil {
		m.GatewayErrs++
	}
}

// RecordTruncation counts a memory truncation that evicted messages.
func (m *Metrics) RecordTruncation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Truncations++
}

// RecordToolCall records one dispatched tool call. failed is true when the
// dispatcher had to turn an error into text.
func (m *Metrics) RecordToolCall(name string, duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tool := m.Tools[name]
	if tool == nil {
		tool = &ToolMetrics{}
		m.Tools[name] = tool
	}
	tool.Calls++
	tool.TotalTime += duration
	if failed {
		tool.Errors++
	}
}

// Snapshot returns the counters as a flat map for logging.
func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	calls, errs := 0, 0
	for _, t := range m.Tools {
		calls += t.Calls
		errs += t.Errors
	}
	return map[string]any{
		"session_duration_ms": time.Since(m.SessionStart).Milliseconds(),
		"runs":                m.Runs,
		"turns":               m.Turns,
		"gateway_errors":      m.GatewayErrs,
		"truncations":         m.Truncations,
		"tool_calls_total":    calls,
		"tool_errors_total":   errs,
	}
}
