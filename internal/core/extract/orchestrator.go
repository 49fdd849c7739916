package extract

import (
	"context"
	"net/url"
	"strings"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// Orchestrator 依固定順序執行擷取策略並在食材為空時以 AI 補齊
//
// 不保存任何跨呼叫狀態，可同時處理多個網址。
type Orchestrator struct {
	fetcher    Fetcher
	strategies []Strategy
	backfill   Strategy
}

// NewOrchestrator 以指定的抓取器與策略建立；backfill 可為 nil
func NewOrchestrator(fetcher Fetcher, strategies []Strategy, backfill Strategy) *Orchestrator {
	return &Orchestrator{
		fetcher:    fetcher,
		strategies: strategies,
		backfill:   backfill,
	}
}

// New 依設定組出預設流程：結構化資料 → meta 標籤 → AI，AI 同時負責補齊食材
//
// p 為 nil 時 AI 策略停用。
func New(cfg *config.Config, p provider.Provider) *Orchestrator {
	ai := NewAIExtractor(p, cfg.AI)
	return NewOrchestrator(
		NewPageFetcher(cfg.Fetch),
		[]Strategy{NewStructuredData(), NewMetadata(), ai},
		ai,
	)
}

// ParseSourceURL 驗證並解析匯入網址，只接受 http / https 絕對網址
func ParseSourceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, common.ErrInvalidURL.Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, common.ErrInvalidURL
	}
	return u, nil
}

// Import 抓取網址並擷取食譜草稿
func (o *Orchestrator) Import(ctx context.Context, rawURL string) (common.RecipeDraft, error) {
	u, err := ParseSourceURL(rawURL)
	if err != nil {
		return common.RecipeDraft{}, err
	}

	page, err := o.fetcher.Fetch(ctx, u)
	if err != nil {
		common.LogWarn("page fetch failed", zap.String("url", u.String()), zap.Error(err))
		return common.RecipeDraft{}, common.ErrFetchFailed.Wrap(err)
	}
	if page.URL == nil {
		page.URL = u
	}
	return o.Run(ctx, page)
}

// ImportText 從自由文字（例如貼文說明）擷取食譜草稿
func (o *Orchestrator) ImportText(ctx context.Context, text string) (common.RecipeDraft, error) {
	if strings.TrimSpace(text) == "" {
		return common.RecipeDraft{}, common.ErrInvalidRequest
	}
	return o.Run(ctx, Page{HTML: text})
}

// Run 對已取得的頁面依序執行策略
func (o *Orchestrator) Run(ctx context.Context, page Page) (common.RecipeDraft, error) {
	var base *common.RecipeDraft
	for _, s := range o.strategies {
		if d, ok := s.Extract(ctx, page); ok && d != nil {
			base = d
			break
		}
		if err := ctx.Err(); err != nil {
			return common.RecipeDraft{}, common.ErrRequestTimeout.Wrap(err)
		}
	}
	if base == nil {
		if err := ctx.Err(); err != nil {
			return common.RecipeDraft{}, common.ErrRequestTimeout.Wrap(err)
		}
		return common.RecipeDraft{}, common.ErrExtractionFailed
	}

	draft := base.Normalize()
	if len(draft.Ingredients) > 0 {
		draft.IngredientsSource = draft.Source
	} else if o.backfill != nil && draft.Source != o.backfill.Name() {
		if filled, ok := o.backfill.Extract(ctx, page); ok && filled != nil && len(filled.Ingredients) > 0 {
			draft = draft.WithIngredients(filled.Ingredients, o.backfill.Name())
		}
	}

	draft.ImageURL = resolveImage(page.URL, draft.ImageURL)
	draft.Confidence = confidence(draft)

	common.LogInfo("recipe extracted",
		zap.Stringer("url", urlStringer{page.URL}),
		zap.String("source", string(draft.Source)),
		zap.String("ingredients_source", string(draft.IngredientsSource)),
		zap.String("confidence", string(draft.Confidence)),
		zap.Int("ingredients", len(draft.Ingredients)),
		zap.Int("instructions", len(draft.Instructions)),
	)
	return draft, nil
}

// confidence 依來源判斷可信度
func confidence(d common.RecipeDraft) common.Confidence {
	switch {
	case len(d.Ingredients) == 0 || d.Source == common.SourceAI:
		return common.ConfidenceLow
	case d.IngredientsSource != d.Source:
		return common.ConfidenceMedium
	case d.Source == common.SourceStructuredData:
		return common.ConfidenceHigh
	default:
		return common.ConfidenceMedium
	}
}

// resolveImage 將相對圖片網址轉為絕對網址；無法解析時捨棄
func resolveImage(base *url.URL, image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	ref, err := url.Parse(image)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

type urlStringer struct{ u *url.URL }

func (s urlStringer) String() string {
	if s.u == nil {
		return "(text)"
	}
	return s.u.String()
}
