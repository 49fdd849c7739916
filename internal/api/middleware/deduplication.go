package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// DedupStore 記錄請求指紋；Seen 在 window 內看過同一指紋時回傳 true
type DedupStore interface {
	Seen(ctx context.Context, fingerprint string, window time.Duration) (bool, error)
}

// MemoryDedupStore 單機記憶體版本
type MemoryDedupStore struct {
	mu        sync.Mutex
	requests  map[string]time.Time
	lastSweep time.Time
}

// NewMemoryDedupStore 建立記憶體指紋表
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{
		requests:  make(map[string]time.Time),
		lastSweep: time.Now(),
	}
}

// Seen 實作 DedupStore
func (s *MemoryDedupStore) Seen(_ context.Context, fingerprint string, window time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// 過期指紋在寫入時順便清理
	if now.Sub(s.lastSweep) > 10*window {
		for k, t := range s.requests {
			if now.Sub(t) > window {
				delete(s.requests, k)
			}
		}
		s.lastSweep = now
	}

	if last, ok := s.requests[fingerprint]; ok && now.Sub(last) <= window {
		return true, nil
	}
	s.requests[fingerprint] = now
	return false, nil
}

// RedisDedupStore 以 Redis SETNX 實作，多個實例共用指紋
type RedisDedupStore struct {
	client *redis.Client
	prefix string
}

// NewRedisDedupStore 建立 Redis 指紋表
func NewRedisDedupStore(client *redis.Client) *RedisDedupStore {
	return &RedisDedupStore{client: client, prefix: "recipe-importer:dedup:"}
}

// Seen 實作 DedupStore；鍵在 window 後自動過期
func (s *RedisDedupStore) Seen(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	created, err := s.client.SetNX(ctx, s.prefix+fingerprint, 1, window).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

// Deduplication 請求去重中間件：相同路徑與內容的 POST 在 window 內只處理一次
func Deduplication(store DedupStore, window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogWarn("Failed to read request body", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
				Error: "Request body too large",
				Code:  common.ErrCodeInvalidRequest,
			})
			return
		}
		// 恢復請求體
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(append([]byte(c.ClientIP()+"\n"+c.Request.URL.Path+"\n"), body...))
		fingerprint := hex.EncodeToString(hash[:])

		seen, err := store.Seen(c.Request.Context(), fingerprint, window)
		if err != nil {
			// 指紋表故障時放行，不影響主流程
			common.LogWarn("Dedup store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if seen {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Error: "Request too frequent",
				Code:  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
