package response

import (
	"net/http"

	"tsound-server/pkg/apperr"
	"tsound-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody 失败响应体
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON 写出原始JSON响应，所有响应都带 Access-Control-Allow-Origin: *
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(status, data)
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error 错误响应 {error: message}
func Error(c *gin.Context, status int, message string) {
	JSON(c, status, ErrorBody{Error: message})
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// MethodNotAllowed 405错误
func MethodNotAllowed(c *gin.Context) {
	Error(c, http.StatusMethodNotAllowed, "Method not allowed")
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// Fail 在handler边界把错误映射为状态码
// 非预期错误只在 debug 模式下把原始信息返回给客户端，其余情况只写日志
func Fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	message := appErr.Message
	if appErr.Kind == apperr.KindInternal {
		_ = c.Error(err)
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if gin.Mode() == gin.DebugMode && appErr.Err != nil {
			message = appErr.Err.Error()
		}
	}
	Error(c, appErr.Status(), message)
}

// Preflight OPTIONS 预检响应：200，空响应体
func Preflight(c *gin.Context, methods, headers string) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", methods)
	h.Set("Access-Control-Allow-Headers", headers)
	h.Set("Access-Control-Max-Age", "86400")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
}
