package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tsound-server/internal/dto"
	"tsound-server/internal/model"
	"tsound-server/internal/repository"
	"tsound-server/pkg/apperr"
	dbPkg "tsound-server/pkg/db"
	"tsound-server/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessengerService 消息、会话与用户资料
type MessengerService struct {
	messages *repository.MessageRepository
	chats    *repository.ChatRepository
	users    *repository.UserRepository
	presence *PresenceService
	notifier Notifier
	now      Clock
}

// NewMessengerService 创建MessengerService实例，notifier 可为 nil
func NewMessengerService(
	messages *repository.MessageRepository,
	chats *repository.ChatRepository,
	users *repository.UserRepository,
	presence *PresenceService,
	notifier Notifier,
) *MessengerService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &MessengerService{
		messages: messages,
		chats:    chats,
		users:    users,
		presence: presence,
		notifier: notifier,
		now:      utcNow,
	}
}

// SetClock 替换时间源
func (s *MessengerService) SetClock(c Clock) { s.now = c }

// SendMessageInput 发送消息参数
type SendMessageInput struct {
	ChatID   string
	SenderID string
	Content  string
	PhotoURL *string
}

// ListMessages 获取会话消息，按时间升序
func (s *MessengerService) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	if chatID == "" {
		return nil, apperr.Validation("chat_id is required")
	}
	messages, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// ListOnline 在线用户列表
func (s *MessengerService) ListOnline(ctx context.Context) ([]model.User, error) {
	return s.presence.ListOnline(ctx)
}

// SendMessage 发送消息，会话已知时推送给另一方
func (s *MessengerService) SendMessage(ctx context.Context, in SendMessageInput) (*model.Message, error) {
	if in.ChatID == "" || in.SenderID == "" {
		return nil, apperr.Validation("chat_id and sender_id required")
	}

	now := s.now()
	message := &model.Message{
		ID:        newMessageID(now.UnixMicro()),
		ChatID:    in.ChatID,
		SenderID:  in.SenderID,
		Content:   in.Content,
		PhotoURL:  in.PhotoURL,
		IsRead:    false,
		CreatedAt: now,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.push(ctx, message)
	return message, nil
}

// push WebSocket推送，失败只记录日志
func (s *MessengerService) push(ctx context.Context, message *model.Message) {
	chat, err := s.chats.GetByID(ctx, message.ChatID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("查询会话失败，跳过推送", zap.String("chat_id", message.ChatID), zap.Error(err))
		}
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "message",
		"message": dto.FromMessage(message),
	})
	if err != nil {
		return
	}
	peer := chat.Peer(message.SenderID)
	if peer == "" {
		logger.Warn("发送者不在会话中，跳过推送", zap.String("chat_id", chat.ID), zap.String("sender_id", message.SenderID))
		return
	}
	s.notifier.SendToUser(peer, payload)
}

// GetOrCreateChat 获取或创建两个用户之间的会话，参数顺序不影响结果
func (s *MessengerService) GetOrCreateChat(ctx context.Context, user1ID, user2ID string) (*model.Chat, error) {
	if user1ID == "" || user2ID == "" {
		return nil, apperr.Validation("user1_id and user2_id required")
	}
	first, second := model.OrderedPair(user1ID, user2ID)
	chat, err := s.chats.GetOrCreate(ctx, &model.Chat{
		ID:        model.ChatID(first, second),
		User1ID:   first,
		User2ID:   second,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("get or create chat: %w", err)
	}
	if chat.HasPair(first, second) {
		return chat, nil
	}

	// 推导ID已属于另一对用户
	logger.Warn("会话ID冲突，使用随机后缀", zap.String("chat_id", chat.ID), zap.String("user1_id", first), zap.String("user2_id", second))
	chat, err = s.chats.Insert(ctx, &model.Chat{
		ID:        model.ChatIDWithSuffix(first, second, shortRandom()),
		User1ID:   first,
		User2ID:   second,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// UpdateUser 局部更新用户资料，last_seen 总是刷新
func (s *MessengerService) UpdateUser(ctx context.Context, userID string, patch repository.UserPatch) (*model.User, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(userID), 10, 64)
	if err != nil || id == 0 {
		return nil, apperr.Validation("user_id required")
	}

	user, err := s.users.ApplyPatch(ctx, uint(id), patch, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		case dbPkg.IsDuplicateKey(err):
			return nil, apperr.Conflict("Username already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// newMessageID 基于时间的消息ID，带随机后缀避免同一微秒内冲突
func newMessageID(unixMicro int64) string {
	return fmt.Sprintf("msg_%d_%s", unixMicro, shortRandom())
}

func shortRandom() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
