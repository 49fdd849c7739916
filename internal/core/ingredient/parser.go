// Package ingredient 將單行食材文字拆成數量、單位與名稱。
package ingredient

import (
	"regexp"
	"strings"

	"recipe-importer/internal/core/units"
	"recipe-importer/internal/pkg/common"
)

const number = `\d+\s+\d+/\d+|\d+/\d+|\d+\.\d+|\.\d+|\d+`

var (
	bulletPattern   = regexp.MustCompile(`^[-*•·▪◦‣●○]+\s*`)
	quantityPattern = regexp.MustCompile(`^(?:` + number + `)(?:\s*(?:-|–|—|\bto\b)\s*(?:` + number + `))?`)
	parenPattern    = regexp.MustCompile(`\([^()]*\)`)
	ofPattern       = regexp.MustCompile(`(?i)^of\s+`)
)

// Parser 食材解析器，零值不可用，請用 NewParser
type Parser struct {
	vocab *units.Vocabulary
}

// NewParser 以指定單位表建立解析器；vocab 為 nil 時使用內嵌單位表
func NewParser(vocab *units.Vocabulary) *Parser {
	if vocab == nil {
		vocab = units.Default()
	}
	return &Parser{vocab: vocab}
}

var defaultParser = NewParser(nil)

// Parse 使用內嵌單位表解析一行食材
func Parse(line string) common.Ingredient {
	return defaultParser.Parse(line)
}

// ParseAll 逐行解析，略過空白行
func ParseAll(lines []string) []common.Ingredient {
	out := make([]common.Ingredient, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, defaultParser.Parse(line))
	}
	return out
}

// Parse 解析一行食材，例如 "4 tablespoons extra-virgin olive oil, divided"
//
// 找不到數量時 quantity 為空字串，不補預設值；逗號後的備註會被捨棄。
func (p *Parser) Parse(line string) common.Ingredient {
	text := common.CollapseWhitespace(common.NormalizeFractions(line))
	text = strings.TrimSpace(bulletPattern.ReplaceAllString(text, ""))

	quantity := ""
	if loc := quantityPattern.FindStringIndex(text); loc != nil {
		quantity = common.CollapseWhitespace(text[:loc[1]])
		text = strings.TrimSpace(text[loc[1]:])
	}

	remainder := strings.TrimSpace(dropNotes(text))

	written, consumed, _, ok := p.vocab.MatchPrefix(remainder)
	if ok {
		rest := strings.TrimSpace(remainder[consumed:])
		rest = ofPattern.ReplaceAllString(rest, "")
		return common.StructuredIngredient(quantity, written, stripAsides(rest))
	}

	name := stripAsides(remainder)
	if name == "" {
		name = remainder
	}
	return common.StructuredIngredient(quantity, "", name)
}

// dropNotes 切掉最後一個括號外逗號之後的備註
func dropNotes(text string) string {
	depth := 0
	cut := -1
	for i, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				cut = i
			}
		}
	}
	if cut == -1 {
		return text
	}
	return text[:cut]
}

// stripAsides 移除括號內的補充說明，例如 "(60ml)"
func stripAsides(text string) string {
	for {
		next := parenPattern.ReplaceAllString(text, " ")
		if next == text {
			break
		}
		text = next
	}
	return strings.Trim(common.CollapseWhitespace(text), " ,;:-")
}
