package model

import "time"

// Message 聊天消息
// IsRead 目前没有接口修改，保留字段与旧数据兼容
type Message struct {
	ID        string    `gorm:"primaryKey;type:varchar(64);comment:消息ID"`
	ChatID    string    `gorm:"type:varchar(160);not null;index:idx_messages_chat_created,priority:1;comment:会话ID"`
	SenderID  string    `gorm:"type:varchar(64);not null;comment:发送者ID"`
	Content   string    `gorm:"type:text;comment:消息内容"`
	PhotoURL  *string   `gorm:"column:photo_url;type:varchar(512);comment:图片URL"`
	IsRead    bool      `gorm:"not null;default:false;comment:是否已读"`
	CreatedAt time.Time `gorm:"index:idx_messages_chat_created,priority:2;comment:创建时间"`
}

func (Message) TableName() string { return "messages" }
