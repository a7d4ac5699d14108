package repository

import (
	"context"
	"errors"

	"tsound-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository 会话数据仓储
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建ChatRepository实例
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// FindByPair 按无序用户对查找会话（兼容按调用顺序写入的旧数据）
func (r *ChatRepository) FindByPair(ctx context.Context, a, b string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a).
		Order("created_at ASC").
		First(&chat).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// GetByID 根据ID获取会话
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&chat).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// GetOrCreate 查找用户对的会话，不存在时插入有序用户对
// 并发创建时由主键冲突 DO NOTHING 兜底，最终读回同一条记录
func (r *ChatRepository) GetOrCreate(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	existing, err := r.FindByPair(ctx, chat.User1ID, chat.User2ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(chat).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, chat.ID)
}

// Insert 直接插入会话（ID已确定不会冲突），返回该用户对最早的会话
func (r *ChatRepository) Insert(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return r.FindByPair(ctx, chat.User1ID, chat.User2ID)
}
