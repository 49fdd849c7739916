package extract

import (
	"context"
	"strings"

	"recipe-importer/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
)

// 只有 meta 標籤時的預設值
const (
	metadataCookMinutes = 30
)

var (
	titleKeys       = []string{"og:title", "twitter:title", "title"}
	descriptionKeys = []string{"og:description", "twitter:description", "description"}
	imageKeys       = []string{"og:image", "og:image:url", "og:image:secure_url", "twitter:image", "twitter:image:src"}
)

// Metadata 從頁面 meta 標籤（Open Graph、Twitter Card）擷取最基本的草稿
type Metadata struct{}

// NewMetadata 建立 meta 標籤擷取器
func NewMetadata() *Metadata {
	return &Metadata{}
}

// Name 策略名稱
func (m *Metadata) Name() common.Source {
	return common.SourceMetadata
}

// Extract 沒有任何標題 meta 時回傳 false
func (m *Metadata) Extract(ctx context.Context, page Page) (*common.RecipeDraft, bool) {
	doc, err := page.Document()
	if err != nil {
		return nil, false
	}
	tags := metaTags(doc)

	title := firstMeta(tags, titleKeys)
	if title == "" {
		return nil, false
	}

	draft := common.RecipeDraft{
		Title:           title,
		Description:     firstMeta(tags, descriptionKeys),
		ImageURL:        firstMeta(tags, imageKeys),
		CookTimeMinutes: metadataCookMinutes,
		Servings:        common.DefaultServings,
		Source:          common.SourceMetadata,
	}.Normalize()
	return &draft, true
}

// metaTags 收集 <meta property|name=... content=...>，同名時保留第一個
func metaTags(doc *goquery.Document) map[string]string {
	tags := make(map[string]string)
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		content := cleanText(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		for _, attr := range []string{"property", "name"} {
			key := strings.ToLower(strings.TrimSpace(sel.AttrOr(attr, "")))
			if key == "" {
				continue
			}
			if _, exists := tags[key]; !exists {
				tags[key] = content
			}
		}
	})
	return tags
}

func firstMeta(tags map[string]string, keys []string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
