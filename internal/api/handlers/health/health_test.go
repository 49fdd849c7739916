package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/core/ai/queue"
	"recipe-importer/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct{}

func (stubProvider) Generate(context.Context, *provider.Request) (*provider.Response, error) {
	return nil, provider.ErrEmptyResponse
}
func (stubProvider) Name() string     { return "openai" }
func (stubProvider) GetModel() string { return "gpt-4o-mini" }
func (stubProvider) Close() error     { return nil }

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", s.err)
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		provider  provider.Provider
		redis     Pinger
		wantAI    AIStatus
		wantRedis string
	}{
		{"no ai, no redis", nil, nil, AIStatus{}, "disabled"},
		{"ai and redis", stubProvider{}, stubPinger{}, AIStatus{Enabled: true, Provider: "openai", Model: "gpt-4o-mini"}, "enabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewHandler(config.Default(), tt.provider, tt.redis), "/health")
			if w.Code != http.StatusOK {
				t.Fatalf("code = %d", w.Code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != "ok" || resp.AI != tt.wantAI || resp.Redis != tt.wantRedis {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHealthCheckReportsQueue(t *testing.T) {
	p := queue.NewManager(stubProvider{}, 3)
	w := serve(NewHandler(config.Default(), p, nil), "/health")

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AI.Queue == nil || resp.AI.Queue.Workers != 3 || resp.AI.Provider != "openai" {
		t.Errorf("ai = %+v", resp.AI)
	}
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name  string
		redis Pinger
		want  int
	}{
		{"without redis", nil, http.StatusOK},
		{"redis up", stubPinger{}, http.StatusOK},
		{"redis down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewHandler(config.Default(), nil, tt.redis), "/ready")
			if w.Code != tt.want {
				t.Errorf("code = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	if w := serve(NewHandler(config.Default(), nil, nil), "/live"); w.Code != http.StatusOK {
		t.Errorf("code = %d", w.Code)
	}
}
