package extract

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"

	"recipe-importer/internal/pkg/common"
)

// maxNesting JSON-LD 巢狀搜尋的最大深度
const maxNesting = 8

// ldNode schema.org 節點；只解析擷取需要的欄位，各欄位型別都容許多種寫法
type ldNode struct {
	Type               ldStrings       `json:"@type"`
	Graph              json.RawMessage `json:"@graph"`
	MainEntity         json.RawMessage `json:"mainEntity"`
	Name               ldText          `json:"name"`
	Headline           ldText          `json:"headline"`
	Description        ldText          `json:"description"`
	RecipeIngredient   ldStrings       `json:"recipeIngredient"`
	Ingredients        ldStrings       `json:"ingredients"`
	RecipeInstructions ldInstructions  `json:"recipeInstructions"`
	PrepTime           ldText          `json:"prepTime"`
	CookTime           ldText          `json:"cookTime"`
	TotalTime          ldText          `json:"totalTime"`
	RecipeYield        ldYield         `json:"recipeYield"`
	RecipeCategory     ldKeywords      `json:"recipeCategory"`
	RecipeCuisine      ldKeywords      `json:"recipeCuisine"`
	Keywords           ldKeywords      `json:"keywords"`
	Image              ldImage         `json:"image"`
}

// isRecipe @type 是否為（或包含）Recipe
func (n *ldNode) isRecipe() bool {
	for _, t := range n.Type {
		t = strings.TrimPrefix(t, "http://schema.org/")
		t = strings.TrimPrefix(t, "https://schema.org/")
		if strings.EqualFold(t, "Recipe") {
			return true
		}
	}
	return false
}

// findRecipe 在文件中尋找 Recipe 節點，包含頂層陣列、@graph 與 mainEntity
func findRecipe(raw json.RawMessage, depth int) (*ldNode, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || depth > maxNesting {
		return nil, false
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		for _, item := range items {
			if node, ok := findRecipe(item, depth+1); ok {
				return node, true
			}
		}
	case '{':
		var node ldNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, false
		}
		if node.isRecipe() {
			return &node, true
		}
		if found, ok := findRecipe(node.Graph, depth+1); ok {
			return found, true
		}
		if found, ok := findRecipe(node.MainEntity, depth+1); ok {
			return found, true
		}
	}
	return nil, false
}

// cleanText 解碼 HTML 實體並合併空白
func cleanText(s string) string {
	return common.CollapseWhitespace(html.UnescapeString(s))
}

// ldText 字串欄位；也接受數字、陣列（取第一個）或帶 @value / text / name 的物件
type ldText string

func (t *ldText) UnmarshalJSON(data []byte) error {
	*t = ldText(textValue(data, 0))
	return nil
}

func textValue(data []byte, depth int) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > maxNesting {
		return ""
	}
	switch data[0] {
	case '"':
		var s string
		if json.Unmarshal(data, &s) == nil {
			return cleanText(s)
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) == nil {
			for _, item := range items {
				if s := textValue(item, depth+1); s != "" {
					return s
				}
			}
		}
	case '{':
		var obj struct {
			Value json.RawMessage `json:"@value"`
			Text  json.RawMessage `json:"text"`
			Name  json.RawMessage `json:"name"`
		}
		if json.Unmarshal(data, &obj) == nil {
			for _, field := range []json.RawMessage{obj.Value, obj.Text, obj.Name} {
				if s := textValue(field, depth+1); s != "" {
					return s
				}
			}
		}
	case 'n', 't', 'f':
		// null / true / false
	default:
		var n json.Number
		if json.Unmarshal(data, &n) == nil {
			return n.String()
		}
	}
	return ""
}

// ldStrings 字串或字串陣列；陣列每個元素都保留一筆（即使為空），維持原本數量
type ldStrings []string

func (s *ldStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			*s = nil
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, textValue(item, 1))
		}
		*s = out
		return nil
	}
	if v := textValue(data, 0); v != "" {
		*s = ldStrings{v}
		return nil
	}
	*s = nil
	return nil
}

// ldKeywords 標籤欄位；字串以逗號分隔，陣列逐項展開
type ldKeywords []string

func (k *ldKeywords) UnmarshalJSON(data []byte) error {
	var items ldStrings
	_ = items.UnmarshalJSON(data)
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	*k = out
	return nil
}

// ldInstructions 步驟欄位：字串、字串陣列、HowToStep 或含 itemListElement 的 HowToSection
type ldInstructions []string

func (in *ldInstructions) UnmarshalJSON(data []byte) error {
	*in = flattenInstructions(data, 0)
	return nil
}

var lineBreakPattern = regexp.MustCompile(`\r?\n|<br\s*/?>`)

func flattenInstructions(data []byte, depth int) []string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > maxNesting {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if json.Unmarshal(data, &s) != nil {
			return nil
		}
		var steps []string
		for _, line := range lineBreakPattern.Split(html.UnescapeString(s), -1) {
			if line = common.CollapseWhitespace(line); line != "" {
				steps = append(steps, line)
			}
		}
		return steps
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return nil
		}
		var steps []string
		for _, item := range items {
			steps = append(steps, flattenInstructions(item, depth+1)...)
		}
		return steps
	case '{':
		var step struct {
			Text            json.RawMessage `json:"text"`
			Name            json.RawMessage `json:"name"`
			ItemListElement json.RawMessage `json:"itemListElement"`
			Steps           json.RawMessage `json:"steps"`
		}
		if json.Unmarshal(data, &step) != nil {
			return nil
		}
		// HowToSection：展開子步驟，標題本身不算一個步驟
		for _, nested := range []json.RawMessage{step.ItemListElement, step.Steps} {
			if len(bytes.TrimSpace(nested)) > 0 {
				return flattenInstructions(nested, depth+1)
			}
		}
		if s := textValue(step.Text, depth+1); s != "" {
			return []string{s}
		}
		if s := textValue(step.Name, depth+1); s != "" {
			return []string{s}
		}
	}
	return nil
}

// ldYield 份量：數字、含數字的字串或其陣列；無法判斷時為 0
type ldYield int

var digitsPattern = regexp.MustCompile(`\d+`)

func (y *ldYield) UnmarshalJSON(data []byte) error {
	*y = ldYield(yieldValue(data, 0))
	return nil
}

func yieldValue(data []byte, depth int) int {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > maxNesting {
		return 0
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return 0
		}
		for _, item := range items {
			if n := yieldValue(item, depth+1); n >= 1 {
				return n
			}
		}
		return 0
	}
	text := textValue(data, depth)
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return int(f)
	}
	if m := digitsPattern.FindString(text); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

// ldImage 圖片：網址字串、陣列或帶 url 的 ImageObject，取第一個可用網址
type ldImage string

func (i *ldImage) UnmarshalJSON(data []byte) error {
	*i = ldImage(imageValue(data, 0))
	return nil
}

func imageValue(data []byte, depth int) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > maxNesting {
		return ""
	}
	switch data[0] {
	case '"':
		var s string
		if json.Unmarshal(data, &s) == nil {
			return strings.TrimSpace(s)
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) == nil {
			for _, item := range items {
				if s := imageValue(item, depth+1); s != "" {
					return s
				}
			}
		}
	case '{':
		var obj struct {
			URL        json.RawMessage `json:"url"`
			ContentURL json.RawMessage `json:"contentUrl"`
			ID         json.RawMessage `json:"@id"`
		}
		if json.Unmarshal(data, &obj) == nil {
			for _, field := range []json.RawMessage{obj.URL, obj.ContentURL, obj.ID} {
				if s := imageValue(field, depth+1); s != "" && !strings.HasPrefix(s, "#") {
					return s
				}
			}
		}
	}
	return ""
}
