package redis

import (
	"context"
	"strconv"
	"time"

	"tsound-server/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PresenceKey 在线会话有序集合，score 为最后活跃的 unix 秒
const PresenceKey = "tsound:presence"

// PresenceMirror 把心跳镜像到 Redis 有序集合，数据库仍是唯一的判定来源
type PresenceMirror struct {
	client *redis.Client
	window time.Duration
}

// NewPresenceMirror 创建镜像，client 为 nil 时所有操作都是空操作
func NewPresenceMirror(client *redis.Client, window time.Duration) *PresenceMirror {
	return &PresenceMirror{client: client, window: window}
}

// Touch 记录会话活跃时间并清理窗口外的成员，失败只记日志
func (m *PresenceMirror) Touch(ctx context.Context, sessionID string, at time.Time) {
	if m == nil || m.client == nil || sessionID == "" {
		return
	}
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, PresenceKey, redis.Z{Score: float64(at.Unix()), Member: sessionID})
		pipe.ZRemRangeByScore(ctx, PresenceKey, "-inf", "("+strconv.FormatInt(m.cutoff(at), 10))
		return nil
	})
	if err != nil {
		logger.Warn("在线状态镜像写入失败", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Count 窗口内活跃的会话数
func (m *PresenceMirror) Count(ctx context.Context, now time.Time) (int64, error) {
	if m == nil || m.client == nil {
		return 0, ErrNotInitialized
	}
	return m.client.ZCount(ctx, PresenceKey, "("+strconv.FormatInt(m.cutoff(now), 10), "+inf").Result()
}

func (m *PresenceMirror) cutoff(now time.Time) int64 {
	return now.Add(-m.window).Unix()
}
