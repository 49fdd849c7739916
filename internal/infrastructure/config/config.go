package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	AI          AIConfig        `mapstructure:"ai"`
	Fetch       FetchConfig     `mapstructure:"fetch"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Redis       RedisConfig     `mapstructure:"redis"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// AI 供應商族系
const (
	ProviderAuto      = "auto"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// AIConfig AI 擷取設定
type AIConfig struct {
	// Provider 為 auto 時依 API Key 前綴判斷族系
	Provider         string        `mapstructure:"provider"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	AnthropicModel   string        `mapstructure:"anthropic_model"`
	BaseURL          string        `mapstructure:"base_url"`
	AnthropicBaseURL string        `mapstructure:"anthropic_base_url"`
	AnthropicVersion string        `mapstructure:"anthropic_version"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Temperature      float32       `mapstructure:"temperature"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxInputChars    int           `mapstructure:"max_input_chars"`
	UseReadability   bool          `mapstructure:"use_readability"`
	MaxConcurrent    int           `mapstructure:"max_concurrent"` // 同時進行中的 AI 請求上限，其餘排隊
}

// Enabled 是否設定了 AI 金鑰
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ResolvedProvider 回傳實際使用的供應商族系
func (c AIConfig) ResolvedProvider() string {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderAnthropic:
		return ProviderAnthropic
	}
	if strings.HasPrefix(strings.TrimSpace(c.APIKey), "sk-ant-") {
		return ProviderAnthropic
	}
	return ProviderOpenAI
}

// FetchConfig 頁面抓取設定
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RedisConfig Redis 設定（目前只用於請求去重）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadConfig 載入設定
//
// .env 由呼叫端（main）先以 godotenv 載入；這裡只讀環境變數與預設值。
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"ai.provider":           "AI_PROVIDER",
		"ai.api_key":            "AI_API_KEY",
		"ai.model":              "AI_MODEL",
		"ai.anthropic_model":    "AI_ANTHROPIC_MODEL",
		"ai.base_url":           "AI_BASE_URL",
		"ai.anthropic_base_url": "AI_ANTHROPIC_BASE_URL",
		"ai.max_tokens":         "MODEL_MAX_TOKENS",
		"ai.max_input_chars":    "AI_MAX_INPUT_CHARS",
		"ai.use_readability":    "AI_USE_READABILITY",
		"ai.max_concurrent":     "AI_MAX_CONCURRENT",
		"fetch.timeout":         "FETCH_TIMEOUT",
		"fetch.user_agent":      "FETCH_USER_AGENT",
		"server.port":           "PORT",
		"rate_limit.enabled":    "RATE_LIMIT_ENABLED",
		"rate_limit.requests":   "RATE_LIMIT_REQUESTS",
		"rate_limit.window":     "RATE_LIMIT_WINDOW",
		"redis.enabled":         "REDIS_ENABLED",
		"redis.addr":            "REDIS_ADDR",
		"redis.password":        "REDIS_PASSWORD",
		"redis.db":              "REDIS_DB",
		"dedup_window":          "DEDUP_WINDOW",
		"log_level":             "LOG_LEVEL",
		"log_file":              "LOG_FILE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-importer")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// AI 設定
	v.SetDefault("ai.provider", ProviderAuto)
	v.SetDefault("ai.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.anthropic_model", "claude-3-5-haiku-latest")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.anthropic_base_url", "https://api.anthropic.com")
	v.SetDefault("ai.anthropic_version", "2023-06-01")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_input_chars", 12000)
	v.SetDefault("ai.use_readability", false)
	v.SetDefault("ai.max_concurrent", 4)

	// 抓取設定
	v.SetDefault("fetch.timeout", "20s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; recipe-importer/1.0)")
	v.SetDefault("fetch.max_body_bytes", 5<<20)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	// Redis 設定
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return errors.New("server port is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return errors.New("invalid server max body bytes")
	}

	if config.AI.MaxInputChars <= 0 {
		return errors.New("invalid ai max input chars")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.New("invalid ai max tokens")
	}
	if config.AI.MaxConcurrent <= 0 {
		return errors.New("invalid ai max concurrent")
	}
	switch strings.ToLower(config.AI.Provider) {
	case ProviderAuto, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown ai provider %q", config.AI.Provider)
	}

	if config.Fetch.Timeout <= 0 {
		return errors.New("invalid fetch timeout")
	}
	if config.Fetch.MaxBodyBytes <= 0 {
		return errors.New("invalid fetch max body bytes")
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return errors.New("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return errors.New("invalid rate limit window")
		}
	}

	if config.Redis.Enabled && config.Redis.Addr == "" {
		return errors.New("redis addr is required when redis is enabled")
	}

	return nil
}

// Default 回傳只含預設值的設定，供 CLI 與測試使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// 預設值皆為合法型別，不會失敗
	_ = v.Unmarshal(&config)
	return &config
}
