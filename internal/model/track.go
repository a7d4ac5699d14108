package model

import "time"

// DefaultCommenterName 未提供昵称时评论使用的默认名
const DefaultCommenterName = "Аноним"

// AnonymousSession 未携带会话标识的调用方
const AnonymousSession = "anonymous"

// Track 用户上传的音轨
// Likes 由点赞记录的增删同步维护
type Track struct {
	ID            string    `gorm:"primaryKey;type:varchar(64);comment:音轨ID"`
	Title         string    `gorm:"type:varchar(255);comment:标题"`
	Artist        string    `gorm:"type:varchar(255);comment:艺术家"`
	AudioURL      string    `gorm:"column:audio_url;type:varchar(1024);comment:音频地址"`
	CoverURL      string    `gorm:"column:cover_url;type:varchar(1024);comment:封面地址"`
	UserSessionID string    `gorm:"type:varchar(64);index;comment:上传者会话"`
	Likes         int       `gorm:"not null;default:0;comment:点赞数"`
	CreatedAt     time.Time `gorm:"index;comment:创建时间"`
}

func (Track) TableName() string { return "tracks" }

// TrackLike 点赞记录，存在即已点赞
type TrackLike struct {
	ID            uint      `gorm:"primaryKey"`
	TrackID       string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_track_likes_track_session,priority:1"`
	UserSessionID string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_track_likes_track_session,priority:2"`
	CreatedAt     time.Time
}

func (TrackLike) TableName() string { return "track_likes" }

// Comment 音轨评论，UserName 是评论时的昵称快照
type Comment struct {
	ID            string    `gorm:"primaryKey;type:varchar(64);comment:评论ID"`
	TrackID       string    `gorm:"type:varchar(64);not null;index;comment:音轨ID"`
	UserSessionID string    `gorm:"type:varchar(64);comment:评论者会话"`
	UserName      string    `gorm:"type:varchar(128);comment:评论者昵称"`
	Text          string    `gorm:"type:text;comment:评论内容"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
}

func (Comment) TableName() string { return "comments" }

// All 需要自动迁移的全部模型
func All() []interface{} {
	return []interface{}{&User{}, &Chat{}, &Message{}, &Track{}, &TrackLike{}, &Comment{}}
}
