package recipe

import (
	"net/http"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestID 取得請求 ID；沒有經過 requestid 中間件時自行產生
func requestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = common.GenerateUUID()
		c.Header("X-Request-ID", id)
	}
	return id
}

// respondError 將錯誤轉成 {error, code}；只輸出預定義的訊息，不帶原始錯誤內容
func respondError(c *gin.Context, reqID string, err error) {
	ce := common.AsCustomError(err)

	fields := []zap.Field{
		zap.String("request_id", reqID),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	c.JSON(ce.Status, common.ErrorResponse{
		Error: ce.Message,
		Code:  ce.Code,
	})
}

// respondBadRequest 請求格式錯誤
func respondBadRequest(c *gin.Context, reqID string, err error) {
	common.LogWarn("請求格式無效",
		zap.Error(err),
		zap.String("request_id", reqID),
	)
	c.JSON(http.StatusBadRequest, common.ErrorResponse{
		Error: common.ErrInvalidRequest.Message,
		Code:  common.ErrCodeInvalidRequest,
	})
}
