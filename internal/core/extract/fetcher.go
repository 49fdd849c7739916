package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher 取得頁面 HTML
type Fetcher interface {
	Fetch(ctx context.Context, pageURL *url.URL) (Page, error)
}

// PageFetcher 以 resty 抓取頁面；單次請求，不重試
type PageFetcher struct {
	client       *resty.Client
	maxBodyBytes int64
}

// NewPageFetcher 依設定建立抓取器
func NewPageFetcher(cfg config.FetchConfig) *PageFetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &PageFetcher{
		client:       client,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Fetch 下載頁面；非 2xx 或內容超過上限時回傳 FetchError
func (f *PageFetcher) Fetch(ctx context.Context, pageURL *url.URL) (Page, error) {
	target := pageURL.String()

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return Page{}, &FetchError{URL: target, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return Page{}, &FetchError{
			URL:        target,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBodyBytes+1))
	if err != nil {
		return Page{}, &FetchError{URL: target, StatusCode: resp.StatusCode(), Err: err}
	}
	if int64(len(data)) > f.maxBodyBytes {
		return Page{}, &FetchError{
			URL:        target,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("page larger than %d bytes", f.maxBodyBytes),
		}
	}

	common.LogDebug("page fetched",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(data)),
	)

	// 以最終網址為準，讓相對圖片網址在重新導向後仍能正確解析
	final := pageURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		final = resp.RawResponse.Request.URL
	}
	return Page{URL: final, HTML: string(data)}, nil
}
