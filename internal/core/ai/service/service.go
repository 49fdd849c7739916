// Package service 依設定選擇 AI 供應商族系。
package service

import (
	"recipe-importer/internal/core/ai/anthropic"
	"recipe-importer/internal/core/ai/openai"
	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/core/ai/queue"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// NewProvider 依 API Key 族系（或 ai.provider 強制指定）建立供應商
//
// 沒有設定 API Key 時回傳 nil，呼叫端應視為 AI 擷取停用。
// 回傳的供應商以隊列包裝，同時進行中的請求不超過 ai.max_concurrent。
func NewProvider(cfg config.AIConfig) provider.Provider {
	if !cfg.Enabled() {
		common.LogWarn("AI API key not configured, AI extraction disabled")
		return nil
	}

	var p provider.Provider
	switch cfg.ResolvedProvider() {
	case config.ProviderAnthropic:
		p = anthropic.NewClient(cfg)
	default:
		p = openai.NewClient(cfg)
	}

	common.LogInfo("AI provider selected",
		zap.String("provider", p.Name()),
		zap.String("model", p.GetModel()),
		zap.String("key_masked", common.MaskAPIKey(cfg.APIKey)),
		zap.Int("max_concurrent", cfg.MaxConcurrent),
	)
	return queue.NewManager(p, cfg.MaxConcurrent)
}
