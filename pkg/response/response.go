package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/pkg/logger"
)

// Response 通用消息响应
type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	ID      *uint  `json:"id,omitempty"`
	PoemID  *uint  `json:"poem_id,omitempty"`
	Count   *int64 `json:"count,omitempty"`
}

// Success 直接输出数据
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Message 输出 {"message": msg}
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{Message: msg})
}

// Fail 输出 {"error": msg}
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Error: msg})
}

func BadRequest(c *gin.Context, msg string) { Fail(c, http.StatusBadRequest, msg) }

func NotFound(c *gin.Context, msg string) { Fail(c, http.StatusNotFound, msg) }

func Unauthorized(c *gin.Context, msg string) { Fail(c, http.StatusUnauthorized, msg) }

// InternalError 记录日志后返回 500，不向调用方暴露内部错误
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")))
	Fail(c, http.StatusInternalServerError, "internal server error")
}
