// Package openai chat-completion 族系的供應商（OpenAI、OpenRouter 等相容服務）。
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ProviderName 供應商族系名稱
const ProviderName = "openai"

// Client chat-completion 客戶端
type Client struct {
	inner      *goopenai.Client
	httpClient *http.Client
	model      string
}

// NewClient 依設定建立客戶端；BaseURL 可指向任何相容的服務
func NewClient(cfg config.AIConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	transport := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		transport.BaseURL = base
	}
	transport.HTTPClient = httpClient

	return &Client{
		inner:      goopenai.NewClientWithConfig(transport),
		httpClient: httpClient,
		model:      cfg.Model,
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

// Generate 送出 chat-completion 請求並取第一個選項的內容
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.inner.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		err = wrapError(err)
		common.LogAICall(ProviderName, c.model, time.Since(start), err)
		return nil, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err := provider.NewError(ProviderName, http.StatusOK, provider.ErrEmptyResponse)
		common.LogAICall(ProviderName, c.model, time.Since(start), err)
		return nil, err
	}

	common.LogAICall(ProviderName, c.model, time.Since(start), nil)
	common.LogDebug("chat completion usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return &provider.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Close 關閉閒置連線
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// wrapError 將 go-openai 的錯誤轉成帶狀態碼的 provider.Error
func wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return provider.NewError(ProviderName, apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return provider.NewError(ProviderName, reqErr.HTTPStatusCode, err)
	}
	return provider.NewError(ProviderName, 0, err)
}
