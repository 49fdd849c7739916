package extract

import (
	"strings"
	"unicode/utf8"

	"recipe-importer/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// minReadableChars 正文擷取結果短於此值時改用整頁文字
const minReadableChars = 500

// CleanText 將頁面轉成送給模型的純文字
//
// 移除 script / style / noscript 後只留文字節點並合併空白，最後截斷到 maxChars 個字元。
// useReadability 為 true 且有網址時先以 go-readability 擷取正文。
// 頁面沒有任何可見文字時（例如只有 JSON-LD 或 meta 標籤），改送 markupText 的內容。
func CleanText(page Page, maxChars int, useReadability bool) string {
	text := ""
	if useReadability && page.URL != nil {
		readabilityParser := readability.NewParser()
		if article, err := readabilityParser.Parse(strings.NewReader(page.HTML), page.URL); err == nil {
			if t := pageText(Page{HTML: article.Content}); utf8.RuneCountInString(t) >= minReadableChars {
				text = t
			}
		}
	}
	if text == "" {
		text = pageText(page)
	}
	if text == "" {
		text = markupText(page)
	}
	return truncateRunes(text, maxChars)
}

func pageText(page Page) string {
	doc, err := page.Document()
	if err != nil {
		return common.CollapseWhitespace(page.HTML)
	}
	doc.Find("script, style, noscript, template, svg, iframe").Remove()

	var sb strings.Builder
	for _, n := range doc.Nodes {
		writeText(n, &sb)
	}
	return common.CollapseWhitespace(sb.String())
}

// markupText 收集 ld+json 區塊的原始內容與 meta 標籤的 content，每項一行
func markupText(page Page) string {
	doc, err := page.Document()
	if err != nil {
		return ""
	}

	var lines []string
	doc.Find(`script[type*="ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		if raw := common.CollapseWhitespace(sel.Text()); raw != "" {
			lines = append(lines, raw)
		}
	})
	doc.Find("meta[content]").Each(func(_ int, sel *goquery.Selection) {
		content := common.CollapseWhitespace(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		key := sel.AttrOr("property", sel.AttrOr("name", ""))
		if key == "" {
			lines = append(lines, content)
			return
		}
		lines = append(lines, key+": "+content)
	})
	return strings.Join(lines, "\n")
}

// writeText 依文件順序輸出文字節點，節點之間以空白分隔
func writeText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxChars]))
}
