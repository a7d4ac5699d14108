package handler

import (
	"net/http"

	"tsound-server/internal/dto"
	"tsound-server/internal/repository"
	"tsound-server/internal/service"
	"tsound-server/pkg/apperr"
	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessengerHandler 消息、会话、在线列表与资料修改
type MessengerHandler struct {
	service *service.MessengerService
}

// NewMessengerHandler 创建MessengerHandler实例
func NewMessengerHandler(s *service.MessengerService) *MessengerHandler {
	return &MessengerHandler{service: s}
}

type messengerRequest struct {
	ChatID    flexibleID `json:"chat_id"`
	SenderID  flexibleID `json:"sender_id"`
	Content   string     `json:"content"`
	PhotoURL  *string    `json:"photo_url"`
	User1ID   flexibleID `json:"user1_id"`
	User2ID   flexibleID `json:"user2_id"`
	UserID    flexibleID `json:"user_id"`
	Username  *string    `json:"username"`
	AvatarURL *string    `json:"avatar_url"`
	Status    *string    `json:"status"`
}

// Handle 按 method + ?action= 分发
func (h *MessengerHandler) Handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		response.Preflight(c, messengerMethods, messengerHeaders)
		return
	}
	if h == nil || h.service == nil {
		unavailable(c)
		return
	}

	action := c.Query("action")
	switch {
	case c.Request.Method == http.MethodGet && action == "messages":
		h.listMessages(c)
	case c.Request.Method == http.MethodGet && action == "online":
		h.listOnline(c)
	case c.Request.Method == http.MethodPost && action == "send":
		h.send(c)
	case c.Request.Method == http.MethodPost && action == "chat":
		h.chat(c)
	case c.Request.Method == http.MethodPost && action == "update_user":
		h.updateUser(c)
	default:
		response.Fail(c, apperr.BadRequest("Invalid action"))
	}
}

func (h *MessengerHandler) listMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Query("chat_id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto.FromMessages(messages))
}

func (h *MessengerHandler) listOnline(c *gin.Context) {
	users, err := h.service.ListOnline(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	out := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		out = append(out, dto.FromOnlineUser(&users[i]))
	}
	response.Success(c, out)
}

func (h *MessengerHandler) send(c *gin.Context) {
	var req messengerRequest
	if err := bindBody(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	message, err := h.service.SendMessage(c.Request.Context(), service.SendMessageInput{
		ChatID:   req.ChatID.String(),
		SenderID: req.SenderID.String(),
		Content:  req.Content,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, dto.FromMessage(message))
}

func (h *MessengerHandler) chat(c *gin.Context) {
	var req messengerRequest
	if err := bindBody(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	chat, err := h.service.GetOrCreateChat(c.Request.Context(), req.User1ID.String(), req.User2ID.String())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto.FromChat(chat))
}

func (h *MessengerHandler) updateUser(c *gin.Context) {
	var req messengerRequest
	if err := bindBody(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	user, err := h.service.UpdateUser(c.Request.Context(), req.UserID.String(), repository.UserPatch{
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Status:    req.Status,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto.FromUser(user))
}
