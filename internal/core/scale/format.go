package scale

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"recipe-importer/internal/pkg/common"
)

const (
	// maxDenominator 分數的最大分母
	maxDenominator = 16
	// fractionTolerance 分數與實際值的最大誤差，超過就改用小數
	fractionTolerance = 0.01
	epsilon           = 1e-9
)

var rangePattern = regexp.MustCompile(`^(.+?)\s*(?:-|–|—|\bto\b)\s*(.+)$`)

// ParseQuantity 將數量文字轉為浮點數
//
// 支援整數、小數、分數、帶分數（各項相加）以及範圍（取平均）；無法解析時回傳 0。
func ParseQuantity(text string) float64 {
	text = common.CollapseWhitespace(common.NormalizeFractions(text))
	if text == "" {
		return 0
	}
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		low, high := parseMixed(m[1]), parseMixed(m[2])
		if low > 0 && high > 0 {
			return (low + high) / 2
		}
	}
	return parseMixed(text)
}

// parseMixed 解析 "1 1/2"、"3/4"、"2.5" 之類的寫法，任何一項無法解析就回傳 0
func parseMixed(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range fields {
		v, ok := parseTerm(f)
		if !ok {
			return 0
		}
		total += v
	}
	return total
}

func parseTerm(term string) (float64, bool) {
	if num, den, found := strings.Cut(term, "/"); found {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(term, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// FormatQuantity 將數量格式化成廚房常見的寫法，例如 1.5 → "1 1/2"
//
// 整數直接輸出；否則以連分數找出分母不超過 16 的最接近分數，
// 誤差太大時退回一位小數（去掉結尾的 ".0"）。小於 1/16 的正數一律顯示為 "1/16"。
func FormatQuantity(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return "0"
	}
	if value < 1.0/maxDenominator {
		return "1/" + strconv.Itoa(maxDenominator)
	}

	whole := math.Floor(value)
	frac := value - whole
	if frac < epsilon {
		return strconv.FormatFloat(whole, 'f', 0, 64)
	}

	num, den := approximate(frac, maxDenominator)
	if math.Abs(frac-float64(num)/float64(den)) > fractionTolerance {
		return formatDecimal(value)
	}

	if num == den {
		whole++
		num = 0
	}
	switch {
	case num == 0:
		return strconv.FormatFloat(whole, 'f', 0, 64)
	case whole == 0:
		return strconv.Itoa(num) + "/" + strconv.Itoa(den)
	default:
		return strconv.FormatFloat(whole, 'f', 0, 64) + " " + strconv.Itoa(num) + "/" + strconv.Itoa(den)
	}
}

// approximate 以連分數展開求 x 的最後一個分母不超過 maxDen 的漸近分數
func approximate(x float64, maxDen int) (num, den int) {
	// h/k 為目前的漸近分數，prevH/prevK 為前一個
	prevH, h := 0, 1
	prevK, k := 1, 0
	v := x
	for i := 0; i < 64; i++ {
		a := int(math.Floor(v))
		nextH := a*h + prevH
		nextK := a*k + prevK
		if nextK > maxDen {
			break
		}
		prevH, h = h, nextH
		prevK, k = k, nextK
		rem := v - float64(a)
		if rem < epsilon {
			break
		}
		v = 1 / rem
	}
	if k == 0 {
		return 0, 1
	}
	return h, k
}

func formatDecimal(value float64) string {
	s := strconv.FormatFloat(value, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
