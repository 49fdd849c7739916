package recipe

import (
	"net/http"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxParseLines 單次解析的行數上限
const maxParseLines = 500

// ParseRequest 食材解析請求
type ParseRequest struct {
	Lines []string `json:"lines" binding:"required"`
}

// ParseResponse 食材解析結果，順序與輸入相同（空白行略過）
type ParseResponse struct {
	Ingredients []common.Ingredient `json:"ingredients"`
}

// HandleParseIngredients 將食材文字拆成數量、單位與名稱
func (h *Handler) HandleParseIngredients(c *gin.Context) {
	reqID := requestID(c)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, reqID, err)
		return
	}
	if len(req.Lines) > maxParseLines {
		respondBadRequest(c, reqID, common.NewValidationError("too many lines"))
		return
	}

	out := make([]common.Ingredient, 0, len(req.Lines))
	for _, line := range req.Lines {
		if ing := h.parser.Parse(line); !ing.IsEmpty() {
			out = append(out, ing)
		}
	}

	common.LogDebug("食材解析完成",
		zap.String("request_id", reqID),
		zap.Int("lines", len(req.Lines)),
		zap.Int("ingredients", len(out)),
	)
	c.JSON(http.StatusOK, ParseResponse{Ingredients: out})
}
