package service

import (
	"context"
	"time"
)

// Clock 可替换的时间源，测试中用于推进时间
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// PresenceMirror 在线状态的旁路镜像（如 Redis），写入失败不影响主流程
type PresenceMirror interface {
	Touch(ctx context.Context, sessionID string, at time.Time)
}

// Notifier 向在线用户推送消息
type Notifier interface {
	SendToUser(userID string, payload []byte)
}

type noopMirror struct{}

func (noopMirror) Touch(context.Context, string, time.Time) {}

type noopNotifier struct{}

func (noopNotifier) SendToUser(string, []byte) {}
