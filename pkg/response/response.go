package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: msg})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }

func Unauthorized(c *gin.Context, msg string) { Error(c, http.StatusUnauthorized, msg) }

func NotFound(c *gin.Context, msg string) { Error(c, http.StatusNotFound, msg) }

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "too many requests")
}

// InternalError 记录错误并返回 500，不向客户端暴露细节
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal server error")
}
