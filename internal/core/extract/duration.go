package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	daysPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)D`)
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)H`)
	minutesPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)M`)
)

// ParseDurationMinutes 將 ISO-8601 時間長度（例如 "PT1H30M"）換算成分鐘
//
// 缺少的欄位視為 0，秒數忽略；無法辨識時回傳 0。
func ParseDurationMinutes(text string) int {
	s := strings.ToUpper(strings.TrimSpace(text))
	if !strings.HasPrefix(s, "P") {
		return 0
	}
	datePart, timePart, _ := strings.Cut(s[1:], "T")

	total := 60*24*durationToken(daysPattern, datePart) +
		60*durationToken(hoursPattern, timePart) +
		durationToken(minutesPattern, timePart)
	return int(math.Round(total))
}

func durationToken(pattern *regexp.Regexp, text string) float64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}
