// Package units 廚房單位詞彙表與換算表，資料來自內嵌的 units.yaml。
//
// 表格在套件初始化時載入一次，之後唯讀，可安全地被多個 goroutine 同時使用。
package units

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed units.yaml
var rawTable []byte

// Unit 一個廚房單位及其各種寫法
type Unit struct {
	Name          string   `yaml:"name"`
	Plural        string   `yaml:"plural"`
	Abbreviations []string `yaml:"abbreviations"`
	Aliases       []string `yaml:"aliases"`
}

// Abbreviation 第一個縮寫，沒有縮寫時為空字串
func (u Unit) Abbreviation() string {
	if len(u.Abbreviations) == 0 {
		return ""
	}
	return u.Abbreviations[0]
}

// Conversion 小單位升級為大單位的規則
type Conversion struct {
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Factor    float64 `yaml:"factor"`
	Threshold float64 `yaml:"threshold"`
}

type table struct {
	Units       []Unit       `yaml:"units"`
	Conversions []Conversion `yaml:"conversions"`
}

type form struct {
	text        string
	unit        *Unit
	abbreviated bool
}

// Vocabulary 已建立索引的單位表
type Vocabulary struct {
	units       map[string]*Unit
	forms       []form // 依長度由長到短
	byForm      map[string]form
	conversions map[string]Conversion
}

var defaultVocabulary = mustLoad(rawTable)

// Default 回傳內嵌的單位表
func Default() *Vocabulary {
	return defaultVocabulary
}

func mustLoad(data []byte) *Vocabulary {
	v, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("units: invalid embedded table: %v", err))
	}
	return v
}

// Load 解析 YAML 單位表並建立索引
func Load(data []byte) (*Vocabulary, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse unit table: %w", err)
	}

	v := &Vocabulary{
		units:       make(map[string]*Unit, len(t.Units)),
		byForm:      make(map[string]form),
		conversions: make(map[string]Conversion, len(t.Conversions)),
	}

	for i := range t.Units {
		u := &t.Units[i]
		if u.Name == "" {
			return nil, fmt.Errorf("unit #%d has no name", i)
		}
		if u.Plural == "" {
			u.Plural = u.Name + "s"
		}
		v.units[u.Name] = u

		add := func(text string, abbreviated bool) error {
			key := strings.ToLower(strings.TrimSpace(text))
			if key == "" {
				return nil
			}
			if prev, ok := v.byForm[key]; ok && prev.unit != u {
				return fmt.Errorf("form %q used by both %q and %q", key, prev.unit.Name, u.Name)
			}
			f := form{text: key, unit: u, abbreviated: abbreviated}
			v.byForm[key] = f
			return nil
		}
		if err := add(u.Name, false); err != nil {
			return nil, err
		}
		if err := add(u.Plural, false); err != nil {
			return nil, err
		}
		for _, a := range u.Aliases {
			if err := add(a, false); err != nil {
				return nil, err
			}
		}
		for _, a := range u.Abbreviations {
			if err := add(a, true); err != nil {
				return nil, err
			}
		}
	}

	for _, f := range v.byForm {
		v.forms = append(v.forms, f)
	}
	sort.Slice(v.forms, func(i, j int) bool {
		if len(v.forms[i].text) != len(v.forms[j].text) {
			return len(v.forms[i].text) > len(v.forms[j].text)
		}
		return v.forms[i].text < v.forms[j].text
	})

	for _, c := range t.Conversions {
		if _, ok := v.units[c.From]; !ok {
			return nil, fmt.Errorf("conversion from unknown unit %q", c.From)
		}
		if _, ok := v.units[c.To]; !ok {
			return nil, fmt.Errorf("conversion to unknown unit %q", c.To)
		}
		if c.Factor <= 0 || c.Threshold <= 0 {
			return nil, fmt.Errorf("conversion %s->%s needs a positive factor and threshold", c.From, c.To)
		}
		v.conversions[c.From] = c
	}

	return v, nil
}

// Lookup 依寫法（不分大小寫，可帶結尾句點）找出單位
func (v *Vocabulary) Lookup(text string) (Unit, bool) {
	f, ok := v.byForm[normalizeForm(text)]
	if !ok {
		return Unit{}, false
	}
	return *f.unit, true
}

// IsAbbreviation 是否為縮寫寫法（縮寫永遠不加複數）
func (v *Vocabulary) IsAbbreviation(text string) bool {
	f, ok := v.byForm[normalizeForm(text)]
	return ok && f.abbreviated
}

// Unit 依標準名稱取得單位
func (v *Vocabulary) Unit(name string) (Unit, bool) {
	u, ok := v.units[name]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// ConversionFrom 回傳以該單位為起點的換算規則
func (v *Vocabulary) ConversionFrom(name string) (Conversion, bool) {
	c, ok := v.conversions[name]
	return c, ok
}

// MatchPrefix 在文字開頭比對單位，長的寫法優先，只接受完整的字
//
// 回傳原文中的單位寫法與消耗的位元組數（含縮寫後的句點）。
func (v *Vocabulary) MatchPrefix(text string) (written string, consumed int, unit Unit, ok bool) {
	for _, f := range v.forms {
		n := len(f.text)
		if len(text) < n || !strings.EqualFold(text[:n], f.text) {
			continue
		}
		if n < len(text) {
			next, _ := utf8.DecodeRuneInString(text[n:])
			if unicode.IsLetter(next) || unicode.IsDigit(next) {
				continue
			}
		}
		consumed = n
		if f.abbreviated && consumed < len(text) && text[consumed] == '.' {
			consumed++
		}
		return text[:n], consumed, *f.unit, true
	}
	return "", 0, Unit{}, false
}

// Pluralize 數量大於 1 時將完整單位名稱改為複數；縮寫與已是複數的寫法不變
func (v *Vocabulary) Pluralize(text string, amount float64) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || amount <= 1 || v.IsAbbreviation(trimmed) {
		return text
	}
	lower := strings.ToLower(trimmed)

	f, known := v.byForm[lower]
	if !known {
		if strings.HasSuffix(lower, "s") {
			return text
		}
		return trimmed + "s"
	}

	u := f.unit
	switch {
	case lower == strings.ToLower(u.Plural):
		return text
	case lower == strings.ToLower(u.Name):
		// 保留原本的大小寫，只補上複數字尾
		if strings.HasPrefix(strings.ToLower(u.Plural), lower) {
			return trimmed + u.Plural[len(u.Name):]
		}
		return u.Plural
	case strings.HasSuffix(lower, "s"):
		return text
	default:
		return trimmed + "s"
	}
}

func normalizeForm(text string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(text)), ".")
}
