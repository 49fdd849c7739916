package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

const systemPrompt = `You extract recipes from web pages.
Reply with a single JSON object and nothing else, using exactly these keys:
{
  "title": string,
  "description": string,
  "ingredients": [string],
  "instructions": [string],
  "prepTimeMinutes": number,
  "cookTimeMinutes": number,
  "servings": number,
  "tags": [string],
  "imageUrl": string
}
Rules:
- Copy every ingredient line as written, including quantity and unit, one line per ingredient.
- Include ingredients listed under sub-headings (for example "For the sauce"); flatten them into the single list and do not include the headings themselves.
- Instructions are the ordered steps, one string per step.
- Use 0 for unknown times and an empty string or empty list for unknown text.
- If the text contains no recipe, reply with {"title": "", "ingredients": [], "instructions": []}.`

var errNoJSON = errors.New("no JSON object in model response")

// AIExtractor 以語言模型從頁面文字擷取食譜，供最後手段與食材補齊使用
//
// 任何失敗（網路、狀態碼、找不到 JSON、內容為空）都視為沒有結果，只寫入日誌。
type AIExtractor struct {
	provider       provider.Provider
	maxInputChars  int
	maxTokens      int
	temperature    float32
	useReadability bool
}

// NewAIExtractor 建立 AI 擷取器；p 為 nil 時擷取器停用
func NewAIExtractor(p provider.Provider, cfg config.AIConfig) *AIExtractor {
	return &AIExtractor{
		provider:       p,
		maxInputChars:  cfg.MaxInputChars,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		useReadability: cfg.UseReadability,
	}
}

// Name 策略名稱
func (a *AIExtractor) Name() common.Source {
	return common.SourceAI
}

// Enabled 是否設定了供應商
func (a *AIExtractor) Enabled() bool {
	return a != nil && a.provider != nil
}

// Extract 呼叫一次模型並解析回應中的第一個 JSON 物件
func (a *AIExtractor) Extract(ctx context.Context, page Page) (*common.RecipeDraft, bool) {
	if !a.Enabled() {
		return nil, false
	}

	text := CleanText(page, a.maxInputChars, a.useReadability)
	if text == "" {
		return nil, false
	}

	var user strings.Builder
	if page.URL != nil {
		user.WriteString("Page URL: ")
		user.WriteString(page.URL.String())
		user.WriteString("\n\n")
	}
	user.WriteString("Page text:\n")
	user.WriteString(text)

	start := time.Now()
	resp, err := a.provider.Generate(ctx, &provider.Request{
		System:      systemPrompt,
		Messages:    []provider.Message{{Role: provider.RoleUser, Content: user.String()}},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		common.LogWarn("AI extraction failed",
			zap.String("provider", a.provider.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, false
	}

	draft, err := parseAIResponse(resp.Content)
	if err != nil {
		common.LogWarn("AI response unusable",
			zap.String("provider", a.provider.Name()),
			zap.Int("content_length", len(resp.Content)),
			zap.Error(err),
		)
		return nil, false
	}
	return draft, true
}

// parseAIResponse 取出回應中的 JSON 並轉成草稿；鍵名未加引號時修補一次
func parseAIResponse(content string) (*common.RecipeDraft, error) {
	raw, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil, errNoJSON
	}

	var payload aiPayload
	if err := common.ParseJSON(raw, &payload); err != nil {
		payload = aiPayload{}
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(raw), &payload); retryErr != nil {
			return nil, err
		}
	}

	if payload.empty() {
		return nil, errors.New("model returned an empty recipe")
	}
	draft := payload.draft()
	return &draft, nil
}

// aiPayload 模型回傳的 JSON；數字欄位可能是字串，食材可能分組
type aiPayload struct {
	Title           ldText         `json:"title"`
	Description     ldText         `json:"description"`
	Ingredients     aiIngredients  `json:"ingredients"`
	Instructions    ldInstructions `json:"instructions"`
	PrepTimeMinutes flexInt        `json:"prepTimeMinutes"`
	CookTimeMinutes flexInt        `json:"cookTimeMinutes"`
	Servings        flexInt        `json:"servings"`
	Tags            ldKeywords     `json:"tags"`
	ImageURL        ldImage        `json:"imageUrl"`
}

func (p *aiPayload) empty() bool {
	return p.Title == "" && len(p.Ingredients) == 0 && len(p.Instructions) == 0
}

func (p *aiPayload) draft() common.RecipeDraft {
	return common.RecipeDraft{
		Title:           string(p.Title),
		Description:     string(p.Description),
		Ingredients:     []common.Ingredient(p.Ingredients),
		Instructions:    []string(p.Instructions),
		PrepTimeMinutes: int(p.PrepTimeMinutes),
		CookTimeMinutes: int(p.CookTimeMinutes),
		Servings:        int(p.Servings),
		Tags:            common.DedupeStrings(p.Tags),
		ImageURL:        string(p.ImageURL),
		Source:          common.SourceAI,
	}.Normalize()
}

// aiIngredients 食材清單；接受字串、{quantity, unit, name} 物件，
// 以及 {"section": ..., "items": [...]} 之類的分組（展開成單一清單）
type aiIngredients []common.Ingredient

func (in *aiIngredients) UnmarshalJSON(data []byte) error {
	*in = flattenIngredients(data, 0)
	return nil
}

func flattenIngredients(data []byte, depth int) []common.Ingredient {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > maxNesting {
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return nil
		}
		var out []common.Ingredient
		for _, item := range items {
			out = append(out, flattenIngredients(item, depth+1)...)
		}
		return out
	case '{':
		var group struct {
			Items       json.RawMessage `json:"items"`
			Ingredients json.RawMessage `json:"ingredients"`
		}
		if json.Unmarshal(data, &group) == nil {
			for _, nested := range []json.RawMessage{group.Items, group.Ingredients} {
				if len(bytes.TrimSpace(nested)) > 0 {
					return flattenIngredients(nested, depth+1)
				}
			}
		}
	}

	var ing common.Ingredient
	if json.Unmarshal(data, &ing) != nil || ing.IsEmpty() {
		return nil
	}
	return []common.Ingredient{ing}
}

// flexInt 整數欄位；接受數字或含數字的字串（例如 "4 servings"），負數與無法解析時為 0
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	text := textValue(data, 0)
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		*f = flexInt(max(math.Round(v), 0))
		return nil
	}
	if m := digitsPattern.FindString(text); m != "" {
		n, _ := strconv.Atoi(m)
		*f = flexInt(n)
		return nil
	}
	*f = 0
	return nil
}
