// Package scale 依份量換算食材數量，並輸出廚房常用的分數寫法。
package scale

import (
	"strings"

	"recipe-importer/internal/core/units"
	"recipe-importer/internal/pkg/common"
)

// minConvertedAmount 換算後小於此值就不升級單位，避免出現 1/8 杯之類的寫法
const minConvertedAmount = 0.25

// Scaler 份量換算器；無狀態，可同時被多個 goroutine 使用
type Scaler struct {
	vocab *units.Vocabulary
}

// NewScaler 以指定單位表建立換算器；vocab 為 nil 時使用內嵌單位表
func NewScaler(vocab *units.Vocabulary) *Scaler {
	if vocab == nil {
		vocab = units.Default()
	}
	return &Scaler{vocab: vocab}
}

var defaultScaler = NewScaler(nil)

// Scale 使用內嵌單位表換算
func Scale(name, quantity, unit string, originalServings, targetServings int) common.ScaledIngredient {
	return defaultScaler.Scale(name, quantity, unit, originalServings, targetServings)
}

// Scale 將數量由 originalServings 份換算成 targetServings 份
//
// 份量相同時原樣回傳（isScaled=false），不經過浮點運算；
// 份量不合法或數量無法解析（例如 "to taste"）時同樣原樣回傳。
func (s *Scaler) Scale(name, quantity, unit string, originalServings, targetServings int) common.ScaledIngredient {
	unchanged := common.ScaledIngredient{
		Name:             name,
		Quantity:         quantity,
		Unit:             unit,
		OriginalQuantity: quantity,
		IsScaled:         false,
	}
	if originalServings == targetServings || originalServings < 1 || targetServings < 1 {
		return unchanged
	}

	amount := ParseQuantity(quantity)
	if amount <= 0 {
		return unchanged
	}

	amount *= float64(targetServings) / float64(originalServings)
	amount, unit = s.upconvert(amount, unit)

	// 單複數依顯示出來的數量決定，1.01 顯示為 "1" 時仍用單數
	rendered := FormatQuantity(amount)
	return common.ScaledIngredient{
		Name:             name,
		Quantity:         rendered,
		Unit:             s.vocab.Pluralize(unit, ParseQuantity(rendered)),
		OriginalQuantity: quantity,
		IsScaled:         true,
	}
}

// upconvert 依換算表把小單位升級為大單位，可連續升級（茶匙 → 湯匙 → 杯）
func (s *Scaler) upconvert(amount float64, unit string) (float64, string) {
	current, ok := s.vocab.Lookup(unit)
	if !ok {
		return amount, unit
	}
	abbreviated := s.vocab.IsAbbreviation(unit)
	converted := false

	for {
		c, ok := s.vocab.ConversionFrom(current.Name)
		if !ok || amount <= c.Threshold || amount*c.Factor < minConvertedAmount {
			break
		}
		next, ok := s.vocab.Unit(c.To)
		if !ok {
			break
		}
		amount *= c.Factor
		current = next
		converted = true
	}

	if !converted {
		return amount, unit
	}
	return amount, displayName(current, abbreviated, unit)
}

// displayName 原本寫縮寫就盡量用縮寫，否則用完整單數名稱；保留首字大寫
func displayName(u units.Unit, abbreviated bool, original string) string {
	name := u.Name
	if abbreviated && u.Abbreviation() != "" {
		name = u.Abbreviation()
	}
	original = strings.TrimSpace(original)
	if original != "" && strings.ToUpper(original[:1]) == original[:1] && strings.ToLower(original[:1]) != original[:1] {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}
