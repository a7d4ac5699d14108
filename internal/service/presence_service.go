package service

import (
	"context"
	"fmt"
	"time"

	"tsound-server/internal/model"
	"tsound-server/internal/repository"
	"tsound-server/pkg/apperr"
)

// DefaultPresenceWindow last_seen 在该窗口内即视为在线
const DefaultPresenceWindow = 5 * time.Minute

// PresenceService 心跳与在线统计
type PresenceService struct {
	users  *repository.UserRepository
	window time.Duration
	mirror PresenceMirror
	now    Clock
}

// NewPresenceService 创建PresenceService实例
func NewPresenceService(users *repository.UserRepository, window time.Duration, mirror PresenceMirror) *PresenceService {
	if window <= 0 {
		window = DefaultPresenceWindow
	}
	if mirror == nil {
		mirror = noopMirror{}
	}
	return &PresenceService{users: users, window: window, mirror: mirror, now: utcNow}
}

// SetClock 替换时间源
func (s *PresenceService) SetClock(c Clock) { s.now = c }

// Heartbeat 刷新会话的 last_seen，会话不存在时创建
func (s *PresenceService) Heartbeat(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperr.Validation("sessionId required")
	}
	now := s.now()
	if err := s.users.TouchSession(ctx, sessionID, now); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	s.mirror.Touch(ctx, sessionID, now)
	return nil
}

// CountOnline 统计在线用户
func (s *PresenceService) CountOnline(ctx context.Context) (int64, error) {
	count, err := s.users.CountOnline(ctx, s.threshold())
	if err != nil {
		return 0, fmt.Errorf("count online: %w", err)
	}
	return count, nil
}

// ListOnline 列出在线用户
func (s *PresenceService) ListOnline(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListOnline(ctx, s.threshold())
	if err != nil {
		return nil, fmt.Errorf("list online: %w", err)
	}
	return users, nil
}

// Window 在线判定窗口
func (s *PresenceService) Window() time.Duration { return s.window }

func (s *PresenceService) threshold() time.Time {
	return s.now().Add(-s.window)
}
