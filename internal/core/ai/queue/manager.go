// Package queue 限制同時進行中的 AI 請求數量。
package queue

import (
	"context"
	"sync/atomic"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	Active         int `json:"active"`
	ProcessedCount int `json:"processed_count"`
	Workers        int `json:"workers"`
}

// Manager 包裝供應商，最多同時執行 workers 個請求，其餘等待空位或 context 結束
type Manager struct {
	next      provider.Provider
	slots     chan struct{}
	waiting   int64
	processed int64
}

// NewManager 創建新的隊列管理器；workers < 1 時視為 1
func NewManager(next provider.Provider, workers int) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		next:  next,
		slots: make(chan struct{}, workers),
	}
}

// Generate 取得空位後轉交給底層供應商
func (m *Manager) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	atomic.AddInt64(&m.waiting, 1)
	select {
	case m.slots <- struct{}{}:
		atomic.AddInt64(&m.waiting, -1)
	case <-ctx.Done():
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("AI request abandoned while queued",
			zap.String("provider", m.next.Name()),
			zap.Error(ctx.Err()),
		)
		return nil, ctx.Err()
	}
	defer func() { <-m.slots }()

	resp, err := m.next.Generate(ctx, req)
	atomic.AddInt64(&m.processed, 1)
	return resp, err
}

// Name 回傳底層供應商名稱
func (m *Manager) Name() string {
	return m.next.Name()
}

// GetModel 回傳底層供應商模型
func (m *Manager) GetModel() string {
	return m.next.GetModel()
}

// Close 關閉底層供應商
func (m *Manager) Close() error {
	return m.next.Close()
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() Status {
	return Status{
		QueueLength:    int(atomic.LoadInt64(&m.waiting)),
		Active:         len(m.slots),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		Workers:        cap(m.slots),
	}
}
