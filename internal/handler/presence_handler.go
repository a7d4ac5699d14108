package handler

import (
	"net/http"

	"tsound-server/internal/dto"
	"tsound-server/internal/service"
	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
)

// PresenceHandler 心跳与在线人数
type PresenceHandler struct {
	service *service.PresenceService
}

// NewPresenceHandler 创建PresenceHandler实例
func NewPresenceHandler(s *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{service: s}
}

type heartbeatRequest struct {
	SessionID flexibleID `json:"sessionId"`
}

// Handle GET 统计在线人数；POST 先心跳再统计
func (h *PresenceHandler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		response.Preflight(c, onlineMethods, onlineHeaders)
		return
	case http.MethodGet, http.MethodPost:
	default:
		response.MethodNotAllowed(c)
		return
	}
	if h == nil || h.service == nil {
		unavailable(c)
		return
	}

	ctx := c.Request.Context()
	if c.Request.Method == http.MethodPost {
		var req heartbeatRequest
		if err := bindBody(c, &req); err != nil {
			response.Fail(c, err)
			return
		}
		if err := h.service.Heartbeat(ctx, req.SessionID.String()); err != nil {
			response.Fail(c, err)
			return
		}
	}

	count, err := h.service.CountOnline(ctx)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto.OnlineCount{OnlineUsers: count})
}
