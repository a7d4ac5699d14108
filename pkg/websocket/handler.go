package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tsound-server/config"
	"tsound-server/pkg/jwt"
	"tsound-server/pkg/logger"
	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeWait 单次写操作的超时
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Heartbeater 刷新会话的在线状态
type Heartbeater interface {
	Heartbeat(ctx context.Context, sessionID string) error
}

// Handler /ws 连接入口
type Handler struct {
	manager  *Manager
	tokens   *jwt.JWTService
	presence Heartbeater
	cfg      config.WebSocketConfig
}

// NewHandler 创建WebSocket处理器，presence 可为 nil
func NewHandler(manager *Manager, tokens *jwt.JWTService, presence Heartbeater, cfg config.WebSocketConfig) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * cfg.PingInterval
	}
	return &Handler{manager: manager, tokens: tokens, presence: presence, cfg: cfg}
}

type inbound struct {
	Type string `json:"type"`
}

// Serve GET /ws?token=<jwt>，也可通过 Sec-WebSocket-Protocol: Bearer <jwt> 传递
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	protocol := c.GetHeader("Sec-WebSocket-Protocol")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(protocol, "Bearer "))
	}
	if token == "" {
		response.Unauthorized(c, "token required")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil || claims.Subject == "" {
		response.Unauthorized(c, "invalid token")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Debug("WebSocket升级失败", zap.Error(err))
		return
	}

	client := NewClient(claims.Subject, claims.SessionID, conn)
	h.manager.AddClient(client)
	logger.Info("WebSocket已连接", zap.String("user_id", client.UserID))
	h.heartbeat(client)

	go h.writePump(client)
	h.readPump(client)

	h.manager.RemoveClient(client)
	logger.Info("WebSocket已断开", zap.String("user_id", client.UserID))
}

// writePump 发送队列中的消息并定时发送ping
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，超时未收到任何数据则断开
func (h *Handler) readPump(client *Client) {
	defer client.Conn.Close()
	_ = client.Conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		_ = client.Conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg inbound
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" {
			h.heartbeat(client)
		}
	}
}

func (h *Handler) heartbeat(client *Client) {
	if h.presence == nil || client.SessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := h.presence.Heartbeat(ctx, client.SessionID); err != nil {
		logger.Warn("WebSocket心跳写入失败", zap.String("session_id", client.SessionID), zap.Error(err))
	}
}
