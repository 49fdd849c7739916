package extract

import (
	"context"
	"encoding/json"
	"strings"

	"recipe-importer/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// StructuredData 從 <script type="application/ld+json"> 區塊擷取 schema.org Recipe
type StructuredData struct{}

// NewStructuredData 建立結構化資料擷取器
func NewStructuredData() *StructuredData {
	return &StructuredData{}
}

// Name 策略名稱
func (s *StructuredData) Name() common.Source {
	return common.SourceStructuredData
}

// Extract 依序掃描每個 JSON-LD 區塊，回傳第一個找到的 Recipe
//
// 單一區塊解析失敗只記錄在 debug 日誌，繼續掃描下一個區塊。
func (s *StructuredData) Extract(ctx context.Context, page Page) (*common.RecipeDraft, bool) {
	doc, err := page.Document()
	if err != nil {
		return nil, false
	}

	var found *ldNode
	doc.Find(`script[type*="ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}
		var block json.RawMessage
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			common.LogDebug("skip json-ld block", zap.Error(&ParseError{Block: i, Err: err}))
			return true
		}
		if node, ok := findRecipe(block, 0); ok {
			found = node
			return false
		}
		return true
	})

	if found == nil {
		return nil, false
	}
	draft := draftFromNode(found)
	return &draft, true
}

// draftFromNode 將 Recipe 節點轉成草稿
func draftFromNode(n *ldNode) common.RecipeDraft {
	lines := []string(n.RecipeIngredient)
	if lines == nil {
		lines = n.Ingredients
	}
	ingredients := make([]common.Ingredient, 0, len(lines))
	for _, line := range lines {
		ingredients = append(ingredients, common.RawIngredient(line))
	}

	title := string(n.Name)
	if title == "" {
		title = string(n.Headline)
	}

	prep := ParseDurationMinutes(string(n.PrepTime))
	cook := ParseDurationMinutes(string(n.CookTime))
	if string(n.CookTime) == "" && string(n.TotalTime) != "" {
		cook = max(ParseDurationMinutes(string(n.TotalTime))-prep, 0)
	}

	tags := make([]string, 0, len(n.RecipeCategory)+len(n.RecipeCuisine)+len(n.Keywords))
	tags = append(tags, n.RecipeCategory...)
	tags = append(tags, n.RecipeCuisine...)
	tags = append(tags, n.Keywords...)

	return common.RecipeDraft{
		Title:           title,
		Description:     string(n.Description),
		Ingredients:     ingredients,
		Instructions:    []string(n.RecipeInstructions),
		PrepTimeMinutes: prep,
		CookTimeMinutes: cook,
		Servings:        int(n.RecipeYield),
		Tags:            common.DedupeStrings(tags),
		ImageURL:        string(n.Image),
		Source:          common.SourceStructuredData,
	}.Normalize()
}
