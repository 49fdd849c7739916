package common

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// CollapseWhitespace 合併連續空白並去除前後空白
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DedupeStrings 去除空字串與重複值（不分大小寫），保留第一次出現的順序與寫法
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = CollapseWhitespace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeFractions 將 ½、¾ 等分數字元展開成 " 1/2"、" 3/4"
//
// NFKC 會把 ½ 分解成 1⁄2（U+2044），這裡再換成一般斜線並補上空白，
// 讓 "1½" 變成 "1 1/2"。
func NormalizeFractions(s string) string {
	if !strings.ContainsFunc(s, isVulgarFraction) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if !isVulgarFraction(r) {
			b.WriteRune(r)
			continue
		}
		expanded := strings.ReplaceAll(norm.NFKC.String(string(r)), "⁄", "/")
		b.WriteByte(' ')
		b.WriteString(expanded)
		b.WriteByte(' ')
	}
	return CollapseWhitespace(b.String())
}

func isVulgarFraction(r rune) bool {
	if r < 0x80 || !unicode.Is(unicode.No, r) {
		return false
	}
	return strings.ContainsRune(norm.NFKC.String(string(r)), '⁄')
}
