package api

import (
	"time"

	"recipe-importer/internal/api/handlers/health"
	recipeHandler "recipe-importer/internal/api/handlers/recipe"
	"recipe-importer/internal/api/middleware"
	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
//
// p 與 rdb 可為 nil：沒有 AI 金鑰時只跑確定性策略，沒有 Redis 時去重改用記憶體。
func SetupRouter(cfg *config.Config, importer recipeHandler.Importer, p provider.Provider, rdb *redis.Client) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	var pinger health.Pinger
	if rdb != nil {
		pinger = rdb
	}
	healthHandler := health.NewHandler(cfg, p, pinger)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	handler := recipeHandler.NewHandler(importer)
	recipeGroup := api.Group("/recipe")
	{
		// 匯入只對重複送出的相同請求去重；換算與解析是純計算
		recipeGroup.POST("/import", middleware.Deduplication(dedupStore(rdb), cfg.DedupWindow), handler.HandleImport)
		recipeGroup.POST("/scale", handler.HandleScale)
		recipeGroup.POST("/ingredients/parse", handler.HandleParseIngredients)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("ai_enabled", p != nil),
		zap.Bool("redis_enabled", rdb != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

func dedupStore(rdb *redis.Client) middleware.DedupStore {
	if rdb != nil {
		return middleware.NewRedisDedupStore(rdb)
	}
	return middleware.NewMemoryDedupStore()
}
