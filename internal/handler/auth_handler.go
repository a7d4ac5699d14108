package handler

import (
	"net/http"

	"tsound-server/internal/service"
	"tsound-server/pkg/apperr"
	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler 注册、登录、登出
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler 创建AuthHandler实例
func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

type authRequest struct {
	Action    string `json:"action"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SessionID string `json:"sessionId"`
}

// Handle POST /api/v1/auth，按 body.action 分发，缺省为 login
func (h *AuthHandler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		response.Preflight(c, authMethods, authHeaders)
		return
	case http.MethodPost:
	default:
		response.MethodNotAllowed(c)
		return
	}
	if h == nil || h.service == nil {
		unavailable(c)
		return
	}

	var req authRequest
	if err := bindBody(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.Action == "" {
		req.Action = "login"
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "register":
		resp, err := h.service.Register(ctx, req.Username, req.Password)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, resp)
	case "login":
		resp, err := h.service.Login(ctx, req.Username, req.Password)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, resp)
	case "logout":
		if err := h.service.Logout(ctx, req.SessionID); err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, gin.H{"success": true})
	default:
		response.Fail(c, apperr.NotFound("Endpoint not found"))
	}
}
