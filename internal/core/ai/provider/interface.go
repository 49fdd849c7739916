// Package provider 定義語言模型供應商的統一介面。
//
// 各族系（chat-completion、messages）的請求與回應格式不同，
// 實作負責把自己的格式轉成這裡的 Request / Response。
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// 對話角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request 表示發送到 AI 提供者的請求
type Request struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 送出一次請求；不重試
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name 供應商族系名稱
	Name() string

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}

// ErrEmptyResponse 回應中沒有任何文字
var ErrEmptyResponse = errors.New("empty response from provider")

// Error 供應商呼叫失敗；內容只寫入日誌，不回給使用者
type Error struct {
	Provider   string
	StatusCode int // 0 表示沒有收到 HTTP 回應
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap 回傳原始錯誤
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError 建立供應商錯誤
func NewError(provider string, status int, err error) *Error {
	return &Error{Provider: provider, StatusCode: status, Err: err}
}
