package recipe

import (
	"context"
	"net/http"
	"strings"

	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/scale"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Importer 食譜匯入流程
type Importer interface {
	Import(ctx context.Context, rawURL string) (common.RecipeDraft, error)
	ImportText(ctx context.Context, text string) (common.RecipeDraft, error)
}

// Handler 食譜處理程序
type Handler struct {
	importer Importer
	parser   *ingredient.Parser
	scaler   *scale.Scaler
}

// NewHandler 創建新的食譜處理程序
func NewHandler(importer Importer) *Handler {
	return &Handler{
		importer: importer,
		parser:   ingredient.NewParser(nil),
		scaler:   scale.NewScaler(nil),
	}
}

// ImportRequest 匯入請求；url 與 text 擇一
type ImportRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// HandleImport 從網址或自由文字匯入食譜草稿
func (h *Handler) HandleImport(c *gin.Context) {
	reqID := requestID(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, reqID, err)
		return
	}
	req.URL = strings.TrimSpace(req.URL)

	common.LogInfo("開始處理食譜匯入請求",
		zap.String("request_id", reqID),
		zap.String("client_ip", c.ClientIP()),
		zap.String("url", req.URL),
		zap.Int("text_length", len(req.Text)),
	)

	var (
		draft common.RecipeDraft
		err   error
	)
	switch {
	case req.URL != "":
		draft, err = h.importer.Import(c.Request.Context(), req.URL)
	case strings.TrimSpace(req.Text) != "":
		draft, err = h.importer.ImportText(c.Request.Context(), req.Text)
	default:
		err = common.ErrInvalidURL
	}
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	common.LogInfo("食譜匯入完成",
		zap.String("request_id", reqID),
		zap.String("source", string(draft.Source)),
		zap.String("confidence", string(draft.Confidence)),
	)
	c.JSON(http.StatusOK, draft)
}
