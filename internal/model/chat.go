package model

import (
	"strconv"
	"time"
)

// Chat 两个用户之间的私聊
// 新建的会话按 user1_id <= user2_id 存储，ID 由有序的用户对推导，主键即保证同一对用户只有一个会话
// 用户ID含下划线时推导出的ID可能与另一对用户相同，此时改用带随机后缀的ID
type Chat struct {
	ID        string    `gorm:"primaryKey;type:varchar(160);comment:会话ID"`
	User1ID   string    `gorm:"column:user1_id;type:varchar(64);not null;index;comment:用户1"`
	User2ID   string    `gorm:"column:user2_id;type:varchar(64);not null;index;comment:用户2"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Chat) TableName() string { return "chats" }

// OrderedPair 返回排序后的用户对
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// ChatID 由用户对推导会话ID，与参数顺序无关
func ChatID(a, b string) string {
	first, second := OrderedPair(a, b)
	return "chat_" + first + "_" + second
}

// ChatIDWithSuffix 推导ID被其他用户对占用时使用的会话ID
func ChatIDWithSuffix(a, b, suffix string) string {
	return ChatID(a, b) + "_" + suffix
}

// HasPair 会话是否属于该无序用户对
func (c *Chat) HasPair(a, b string) bool {
	return (c.User1ID == a && c.User2ID == b) || (c.User1ID == b && c.User2ID == a)
}

// Peer 返回会话中另一方的ID，userID 不在会话中时返回空串
func (c *Chat) Peer(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
