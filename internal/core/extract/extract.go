// Package extract 從食譜網頁或自由文字擷取食譜草稿。
//
// 擷取策略依序為結構化資料（JSON-LD）、頁面 meta 標籤、AI；
// 第一個有結果的策略成為基礎草稿，食材為空時再以 AI 補齊食材。
package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"recipe-importer/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
)

// Page 一份待擷取的來源
type Page struct {
	// URL 來源網址；自由文字匯入時為 nil
	URL *url.URL
	// HTML 頁面原始內容，自由文字匯入時為純文字
	HTML string
}

// Document 解析成 goquery 文件；每次呼叫都重新解析，策略之間不共用狀態
func (p Page) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
}

// Strategy 擷取策略；沒有結果時回傳 false，不回傳錯誤
type Strategy interface {
	Name() common.Source
	Extract(ctx context.Context, page Page) (*common.RecipeDraft, bool)
}

// FetchError 無法取得頁面
type FetchError struct {
	URL        string
	StatusCode int // 0 表示沒有收到 HTTP 回應
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap 回傳原始錯誤
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError 單一 JSON-LD 區塊無法解析；只記錄，不中斷掃描
type ParseError struct {
	Block int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json-ld block %d: %v", e.Block, e.Err)
}

// Unwrap 回傳原始錯誤
func (e *ParseError) Unwrap() error {
	return e.Err
}
