package dto

import (
	"time"

	"tsound-server/internal/model"
)

// AuthResponse 注册/登录响应
type AuthResponse struct {
	SessionID   string `json:"sessionId"`
	Username    string `json:"username"`
	UserID      uint   `json:"userId"`
	AvatarURL   string `json:"avatarUrl"`
	AccessToken string `json:"accessToken,omitempty"`
}

// OnlineCount 在线人数
type OnlineCount struct {
	OnlineUsers int64 `json:"onlineUsers"`
}

// UserInfo 用户信息（隐藏密码哈希）
type UserInfo struct {
	ID        uint    `json:"id"`
	SessionID string  `json:"session_id"`
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Status    string  `json:"status"`
	LastSeen  *string `json:"last_seen"`
}

// FromUser 转换用户记录
func FromUser(u *model.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		SessionID: u.SessionID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Status:    u.Status,
		LastSeen:  Timestamp(u.LastSeen),
	}
}

// FromOnlineUser 在线列表里用户名为空时回退 User_<id>，状态为空时回退 online
func FromOnlineUser(u *model.User) UserInfo {
	info := FromUser(u)
	name := u.DisplayName()
	info.Username = &name
	if info.Status == "" {
		info.Status = model.StatusOnline
	}
	return info
}

// MessageInfo 消息
type MessageInfo struct {
	ID        string  `json:"id"`
	ChatID    string  `json:"chat_id"`
	SenderID  string  `json:"sender_id"`
	Content   string  `json:"content"`
	PhotoURL  *string `json:"photo_url"`
	IsRead    bool    `json:"is_read"`
	CreatedAt *string `json:"created_at"`
}

// FromMessage 转换消息记录
func FromMessage(m *model.Message) MessageInfo {
	return MessageInfo{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		PhotoURL:  m.PhotoURL,
		IsRead:    m.IsRead,
		CreatedAt: Timestamp(m.CreatedAt),
	}
}

// FromMessages 批量转换，空列表返回 []
func FromMessages(messages []model.Message) []MessageInfo {
	out := make([]MessageInfo, 0, len(messages))
	for i := range messages {
		out = append(out, FromMessage(&messages[i]))
	}
	return out
}

// ChatInfo 会话
type ChatInfo struct {
	ID        string  `json:"id"`
	User1ID   string  `json:"user1_id"`
	User2ID   string  `json:"user2_id"`
	CreatedAt *string `json:"created_at"`
}

// FromChat 转换会话记录
func FromChat(c *model.Chat) ChatInfo {
	return ChatInfo{ID: c.ID, User1ID: c.User1ID, User2ID: c.User2ID, CreatedAt: Timestamp(c.CreatedAt)}
}

// CommentInfo 音轨评论
type CommentInfo struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	Text      string  `json:"text"`
	Timestamp *string `json:"timestamp"`
}

// TrackInfo 音轨及其聚合的评论、点赞
type TrackInfo struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	URL         string        `json:"url"`
	CoverURL    string        `json:"coverUrl"`
	Likes       int           `json:"likes"`
	LikedBy     []string      `json:"likedBy"`
	Comments    []CommentInfo `json:"comments"`
	PlaylistIDs []string      `json:"playlistIds"`
}

// TrackList 音轨列表响应
type TrackList struct {
	Tracks []TrackInfo `json:"tracks"`
}

// Timestamp ISO-8601 时间，零值返回 nil
func Timestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
