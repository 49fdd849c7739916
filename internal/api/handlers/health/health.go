package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/core/ai/queue"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// pingTimeout 就緒檢查時 Redis PING 的上限
const pingTimeout = 2 * time.Second

// Pinger 可被就緒檢查探測的 Redis 連線；*redis.Client 即符合
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	AI        AIStatus               `json:"ai"`
	Redis     string                 `json:"redis"`
}

// AIStatus AI 擷取狀態
type AIStatus struct {
	Enabled  bool          `json:"enabled"`
	Provider string        `json:"provider,omitempty"`
	Model    string        `json:"model,omitempty"`
	Queue    *queue.Status `json:"queue,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	cfg      *config.Config
	provider provider.Provider
	redis    Pinger
}

// NewHandler 創建健康檢查處理程序；provider 與 redis 皆可為 nil
func NewHandler(cfg *config.Config, p provider.Provider, rdb Pinger) *Handler {
	return &Handler{cfg: cfg, provider: p, redis: rdb}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		AI:    h.aiStatus(),
		Redis: "disabled",
	}
	if h.redis != nil {
		response.Redis = "enabled"
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

func (h *Handler) aiStatus() AIStatus {
	if h.provider == nil {
		return AIStatus{}
	}
	status := AIStatus{
		Enabled:  true,
		Provider: h.provider.Name(),
		Model:    h.provider.GetModel(),
	}
	if q, ok := h.provider.(*queue.Manager); ok {
		qs := q.GetQueueStatus()
		status.Queue = &qs
	}
	return status
}

// ReadinessCheck 就緒檢查處理器；Redis 無法連線時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := h.redis.Ping(ctx).Err(); err != nil {
			common.LogWarn("Redis 無法連線", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"redis":  "unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
