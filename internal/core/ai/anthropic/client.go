// Package anthropic messages 族系的供應商。
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ProviderName 供應商族系名稱
const ProviderName = "anthropic"

const defaultVersion = "2023-06-01"

// Client messages API 客戶端
type Client struct {
	client *resty.Client
	model  string
}

type messagesRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []provider.Message `json:"messages"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient 依設定建立客戶端
func NewClient(cfg config.AIConfig) *Client {
	version := cfg.AnthropicVersion
	if version == "" {
		version = defaultVersion
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.AnthropicBaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", version).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client: client,
		model:  cfg.AnthropicModel,
	}
}

// Name 供應商族系名稱
func (c *Client) Name() string {
	return ProviderName
}

// GetModel 使用中的模型
func (c *Client) GetModel() string {
	return c.model
}

// Generate 送出 messages 請求，合併所有 text 區塊為回應內容
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := messagesRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  req.Messages,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/v1/messages")
	if err != nil {
		err = provider.NewError(ProviderName, 0, err)
		common.LogAICall(ProviderName, c.model, time.Since(start), err)
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		err := provider.NewError(ProviderName, resp.StatusCode(), errors.New(errorMessage(resp.Body())))
		common.LogAICall(ProviderName, c.model, time.Since(start), err)
		return nil, err
	}

	var result messagesResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		err = provider.NewError(ProviderName, resp.StatusCode(), fmt.Errorf("failed to parse response: %w", err))
		common.LogAICall(ProviderName, c.model, time.Since(start), err)
		return nil, err
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	content := sb.String()
	if strings.TrimSpace(content) == "" {
		err := provider.NewError(ProviderName, resp.StatusCode(), provider.ErrEmptyResponse)
		common.LogAICall(ProviderName, c.model, time.Since(start), err)
		return nil, err
	}

	common.LogAICall(ProviderName, c.model, time.Since(start), nil)
	common.LogDebug("messages usage",
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens),
	)

	return &provider.Response{
		Content: content,
		Model:   result.Model,
		Usage: provider.Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
		},
	}, nil
}

// Close 關閉閒置連線
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// errorMessage 取出錯誤回應中的訊息，無法解析時截斷原文
func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Type + ": " + e.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		return "empty error body"
	}
	return text
}
