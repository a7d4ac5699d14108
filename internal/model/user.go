package model

import "time"

// 用户状态
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User 用户模型
// 注册时创建，或在首次心跳时只带 session_id 创建
// Username 允许为空（心跳创建的匿名会话），非空时唯一
// PasswordHash 仅存储哈希，不存储明文
type User struct {
	ID           uint      `gorm:"primaryKey"`
	SessionID    string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:会话ID"`
	Username     *string   `gorm:"type:varchar(64);uniqueIndex;comment:用户名"`
	PasswordHash *string   `gorm:"type:varchar(255);comment:密码哈希"`
	AvatarURL    *string   `gorm:"column:avatar_url;type:varchar(512);comment:头像URL"`
	Status       string    `gorm:"type:varchar(32);not null;default:'offline';index;comment:状态"`
	LastSeen     time.Time `gorm:"index;comment:最近在线时间"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 用户名为空时回退为 User_<id>
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "User_" + uintToString(u.ID)
}
