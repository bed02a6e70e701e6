package services

import (
	"sync"
	"time"
)

// DefaultHistoryLimit /events 不带 limit 参数时返回的条数
const DefaultHistoryLimit = 100

// EventEntry 历史日志里的一条事件,追加后不再修改
type EventEntry struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// EventHistory 全部规范化事件的追加日志,用于审计和 debug 投影。
// 进程生命周期内只增不减,仅 Clear 重置。
type EventHistory struct {
	mu      sync.RWMutex
	entries []EventEntry
}

// NewEventHistory 创建事件历史日志
func NewEventHistory() *EventHistory {
	return &EventHistory{}
}

// Append 追加一条事件
func (h *EventHistory) Append(kind string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, EventEntry{
		Type:      kind,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Len 历史事件总数
func (h *EventHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Recent 返回最近 limit 条事件,limit <= 0 时用默认值
func (h *EventHistory) Recent(limit int) []EventEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	start := len(h.entries) - limit
	if start < 0 {
		start = 0
	}
	return append([]EventEntry(nil), h.entries[start:]...)
}

// ForCourt 返回指定场地最近 n 条事件,按载荷里提取的场地编号过滤
func (h *EventHistory) ForCourt(lapangan string, n int) []EventEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var matched []EventEntry
	for _, e := range h.entries {
		if ExtractCourt(e.Data) == lapangan {
			matched = append(matched, e)
		}
	}

	if len(matched) > n {
		matched = matched[len(matched)-n:]
	}
	return matched
}

// Clear 清空历史
func (h *EventHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
