package repository

import (
	"context"
	"errors"
	"time"

	"tsound-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// UserRepository 用户数据仓储
// authTable 是注册/登录读写的用户表，其余操作固定使用 users
type UserRepository struct {
	db        *gorm.DB
	authTable string
}

// NewUserRepository 创建UserRepository实例，authTable 为空时使用 users
func NewUserRepository(db *gorm.DB, authTable string) *UserRepository {
	if authTable == "" {
		authTable = model.User{}.TableName()
	}
	return &UserRepository{db: db, authTable: authTable}
}

func (r *UserRepository) auth(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.authTable)
}

// UsernameExists 用户名是否已被注册
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.auth(ctx).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// CreateAuthUser 在认证用户表中创建用户
func (r *UserRepository) CreateAuthUser(ctx context.Context, user *model.User) error {
	return r.auth(ctx).Create(user).Error
}

// GetByUsername 按用户名查询认证用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.auth(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// MarkOnline 登录后标记在线
func (r *UserRepository) MarkOnline(ctx context.Context, id uint, now time.Time) error {
	return r.auth(ctx).Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.StatusOnline, "last_seen": now}).Error
}

// SetStatusBySession 按会话更新状态，返回是否命中
func (r *UserRepository) SetStatusBySession(ctx context.Context, sessionID, status string, now time.Time) (bool, error) {
	result := r.auth(ctx).Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{"status": status, "last_seen": now})
	return result.RowsAffected > 0, result.Error
}

// TouchSession 心跳：按 session_id 插入或刷新 last_seen
func (r *UserRepository) TouchSession(ctx context.Context, sessionID string, now time.Time) error {
	user := &model.User{
		SessionID: sessionID,
		Status:    model.StatusOffline,
		LastSeen:  now,
		CreatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": now}),
	}).Create(user).Error
}

// onlineScope 在线判定：窗口内有活动，或状态为 online
func onlineScope(since time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("last_seen > ? OR status = ?", since, model.StatusOnline)
	}
}

// CountOnline 统计在线用户数
func (r *UserRepository) CountOnline(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Scopes(onlineScope(since)).Count(&count).Error
	return count, err
}

// ListOnline 列出在线用户，最近活跃的在前
func (r *UserRepository) ListOnline(ctx context.Context, since time.Time) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Scopes(onlineScope(since)).
		Order("last_seen DESC").Order("id ASC").
		Find(&users).Error
	return users, err
}

// UserPatch 用户资料的局部更新，nil 字段保持不变
type UserPatch struct {
	Username  *string
	AvatarURL *string
	Status    *string
}

// columns 固定的列写入器，列名不来自请求
func (p UserPatch) columns(now time.Time) map[string]interface{} {
	cols := map[string]interface{}{"last_seen": now}
	if p.Username != nil {
		cols["username"] = *p.Username
	}
	if p.AvatarURL != nil {
		cols["avatar_url"] = *p.AvatarURL
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	return cols
}

// ApplyPatch 应用局部更新并返回更新后的用户
func (r *UserRepository) ApplyPatch(ctx context.Context, id uint, patch UserPatch, now time.Time) (*model.User, error) {
	var updated *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(patch.columns(now)).Error; err != nil {
			return err
		}
		var u model.User
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err)
		}
		updated = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
