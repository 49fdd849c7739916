package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // 每秒補充的令牌數
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// allowAt 檢查在 now 時是否還有令牌
func (rl *RateLimiter) allowAt(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := now.Sub(rl.lastTime).Seconds()
	if elapsed > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
		rl.lastTime = now
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// full 令牌桶是否已補滿（可回收）
func (rl *RateLimiter) full(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens+now.Sub(rl.lastTime).Seconds()*rl.rate >= rl.capacity
}

// ClientLimiter 以用戶端 IP 區分的限流器集合
type ClientLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	requests  int
	window    time.Duration
	lastSweep time.Time
}

// NewClientLimiter 建立限流器集合
func NewClientLimiter(requests int, window time.Duration) *ClientLimiter {
	return &ClientLimiter{
		limiters:  make(map[string]*RateLimiter),
		requests:  requests,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow 檢查該用戶端是否還有額度
func (cl *ClientLimiter) Allow(client string) bool {
	now := time.Now()

	cl.mu.Lock()
	// 每個時間窗清掉一次已補滿的限流器，避免 map 無限成長
	if now.Sub(cl.lastSweep) > cl.window {
		for k, l := range cl.limiters {
			if l.full(now) {
				delete(cl.limiters, k)
			}
		}
		cl.lastSweep = now
	}
	limiter, ok := cl.limiters[client]
	if !ok {
		limiter = NewRateLimiter(cl.requests, cl.window)
		cl.limiters[client] = limiter
	}
	cl.mu.Unlock()

	return limiter.allowAt(now)
}

// RateLimit 依用戶端 IP 限流的中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := NewClientLimiter(requests, window)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Error: common.ErrTooManyRequests.Message,
				Code:  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
