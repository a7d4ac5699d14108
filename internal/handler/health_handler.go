package handler

import (
	"context"
	"net/http"
	"time"

	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
)

// HealthCheck 单个依赖的健康检查
type HealthCheck func(ctx context.Context) error

// PresenceCount 在线状态镜像中窗口内的用户数
type PresenceCount func(ctx context.Context) (int64, error)

// HealthHandler /health
type HealthHandler struct {
	database HealthCheck
	redis    HealthCheck
	mirror   PresenceCount
}

// NewHealthHandler 创建HealthHandler实例，redis 为 nil 表示未启用
func NewHealthHandler(database, redis HealthCheck) *HealthHandler {
	return &HealthHandler{database: database, redis: redis}
}

// WithPresenceMirror 在健康检查中报告镜像的在线人数
func (h *HealthHandler) WithPresenceMirror(count PresenceCount) *HealthHandler {
	h.mirror = count
	return h
}

// Handle 数据库不可用时返回503，Redis 只报告状态
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":   "ok",
		"database": "ok",
		"redis":    "disabled",
		"time":     time.Now().UTC().Format(time.RFC3339),
	}
	if h.database == nil {
		status = http.StatusServiceUnavailable
		body["status"] = "db-down"
		body["database"] = "not configured"
	} else if err := h.database(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "db-down"
		body["database"] = err.Error()
	}
	if h.redis != nil {
		body["redis"] = "ok"
		if err := h.redis(ctx); err != nil {
			body["redis"] = err.Error()
		}
	}
	if h.mirror != nil {
		if n, err := h.mirror(ctx); err != nil {
			body["presenceMirror"] = err.Error()
		} else {
			body["presenceMirror"] = n
		}
	}
	response.JSON(c, status, body)
}
