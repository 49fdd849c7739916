package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Source 產生草稿的擷取策略
type Source string

const (
	SourceStructuredData Source = "structured_data"
	SourceMetadata       Source = "metadata"
	SourceAI             Source = "ai"
)

// Confidence 草稿的可信度等級（僅供參考，不作為成功與否的判斷）
type Confidence string

const (
	// ConfidenceHigh 結構化資料且食材完整
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium 確定性策略為基礎，食材由 AI 補齊
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow AI 為主要來源，或食材仍為空
	ConfidenceLow Confidence = "low"
)

// Ingredient 食材：原始字串或結構化的 {quantity, unit, name} 二擇一
type Ingredient struct {
	Raw      string
	Quantity string
	Unit     string
	Name     string
}

// RawIngredient 建立原始字串食材
func RawIngredient(line string) Ingredient {
	return Ingredient{Raw: line}
}

// StructuredIngredient 建立結構化食材
func StructuredIngredient(quantity, unit, name string) Ingredient {
	return Ingredient{Quantity: quantity, Unit: unit, Name: name}
}

// IsStructured 是否為結構化食材
func (i Ingredient) IsStructured() bool {
	return i.Raw == "" && (i.Quantity != "" || i.Unit != "" || i.Name != "")
}

// IsEmpty 兩種形式都沒有內容
func (i Ingredient) IsEmpty() bool {
	return strings.TrimSpace(i.Raw) == "" && !i.IsStructured()
}

// String 食材的單行表示
func (i Ingredient) String() string {
	if !i.IsStructured() {
		return i.Raw
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{i.Quantity, i.Unit, i.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type structuredIngredient struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Name     string `json:"name"`
}

// MarshalJSON 原始食材輸出字串，結構化食材輸出物件
func (i Ingredient) MarshalJSON() ([]byte, error) {
	if i.IsStructured() {
		return json.Marshal(structuredIngredient{Quantity: i.Quantity, Unit: i.Unit, Name: i.Name})
	}
	return json.Marshal(i.Raw)
}

// UnmarshalJSON 接受字串或物件；物件中的數量可以是數字
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Ingredient{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = RawIngredient(strings.TrimSpace(s))
		return nil
	case '{':
		var obj struct {
			Quantity json.RawMessage `json:"quantity"`
			Amount   json.RawMessage `json:"amount"`
			Unit     string          `json:"unit"`
			Name     string          `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		qty := scalarString(obj.Quantity)
		if qty == "" {
			qty = scalarString(obj.Amount)
		}
		*i = StructuredIngredient(qty, strings.TrimSpace(obj.Unit), strings.TrimSpace(obj.Name))
		return nil
	default:
		return fmt.Errorf("ingredient must be a string or an object, got %s", string(data))
	}
}

// scalarString 將 JSON 字串或數字轉為字串
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// RecipeDraft 擷取後尚未儲存的食譜草稿
type RecipeDraft struct {
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Ingredients       []Ingredient `json:"ingredients"`
	Instructions      []string     `json:"instructions"`
	PrepTimeMinutes   int          `json:"prepTimeMinutes"`
	CookTimeMinutes   int          `json:"cookTimeMinutes"`
	Servings          int          `json:"servings"`
	Tags              []string     `json:"tags"`
	ImageURL          string       `json:"imageUrl,omitempty"`
	Source            Source       `json:"source"`
	IngredientsSource Source       `json:"ingredientsSource,omitempty"`
	Confidence        Confidence   `json:"confidence"`
}

// DefaultServings 無法判斷份量時的預設值
const DefaultServings = 4

// Normalize 補齊不變量：清單永不為 nil、時間非負、份量至少 1
func (d RecipeDraft) Normalize() RecipeDraft {
	if d.Ingredients == nil {
		d.Ingredients = []Ingredient{}
	}
	if d.Instructions == nil {
		d.Instructions = []string{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.PrepTimeMinutes < 0 {
		d.PrepTimeMinutes = 0
	}
	if d.CookTimeMinutes < 0 {
		d.CookTimeMinutes = 0
	}
	if d.Servings < 1 {
		d.Servings = DefaultServings
	}
	return d
}

// WithIngredients 回傳只替換食材欄位的新草稿
func (d RecipeDraft) WithIngredients(ingredients []Ingredient, from Source) RecipeDraft {
	next := d
	next.Ingredients = append([]Ingredient(nil), ingredients...)
	next.Instructions = append([]string(nil), d.Instructions...)
	next.Tags = append([]string(nil), d.Tags...)
	next.IngredientsSource = from
	return next.Normalize()
}

// ScaledIngredient 依份量換算後的食材
type ScaledIngredient struct {
	Name             string `json:"name"`
	Quantity         string `json:"quantity"`
	Unit             string `json:"unit"`
	OriginalQuantity string `json:"originalQuantity"`
	IsScaled         bool   `json:"isScaled"`
}
