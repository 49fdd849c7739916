package recipe

import (
	"net/http"
	"strings"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScaleIngredient 待換算的食材；只給 line 時先解析出數量與單位
type ScaleIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Line     string `json:"line,omitempty"`
}

// ScaleRequest 份量換算請求
type ScaleRequest struct {
	OriginalServings int               `json:"originalServings" binding:"required,min=1"`
	TargetServings   int               `json:"targetServings" binding:"required,min=1"`
	Ingredients      []ScaleIngredient `json:"ingredients" binding:"required"`
}

// ScaleResponse 份量換算結果
type ScaleResponse struct {
	Ingredients []common.ScaledIngredient `json:"ingredients"`
}

// HandleScale 依份量換算食材數量
func (h *Handler) HandleScale(c *gin.Context) {
	reqID := requestID(c)

	var req ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, reqID, err)
		return
	}

	out := make([]common.ScaledIngredient, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		if in.Name == "" && in.Quantity == "" && strings.TrimSpace(in.Line) != "" {
			parsed := h.parser.Parse(in.Line)
			in.Name, in.Quantity, in.Unit = parsed.Name, parsed.Quantity, parsed.Unit
		}
		out = append(out, h.scaler.Scale(in.Name, in.Quantity, in.Unit, req.OriginalServings, req.TargetServings))
	}

	common.LogDebug("份量換算完成",
		zap.String("request_id", reqID),
		zap.Int("original_servings", req.OriginalServings),
		zap.Int("target_servings", req.TargetServings),
		zap.Int("ingredients", len(out)),
	)
	c.JSON(http.StatusOK, ScaleResponse{Ingredients: out})
}
