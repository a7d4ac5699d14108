package repository

import (
	"context"

	"tsound-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackRepository 音轨、点赞与评论的数据仓储
type TrackRepository struct {
	db *gorm.DB
}

// NewTrackRepository 创建TrackRepository实例
func NewTrackRepository(db *gorm.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create 创建音轨
func (r *TrackRepository) Create(ctx context.Context, track *model.Track) error {
	return r.db.WithContext(ctx).Create(track).Error
}

// List 全部音轨，最新的在前
func (r *TrackRepository) List(ctx context.Context) ([]model.Track, error) {
	tracks := make([]model.Track, 0)
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&tracks).Error
	return tracks, err
}

// CommentsFor 批量获取多个音轨的评论，按时间升序
func (r *TrackRepository) CommentsFor(ctx context.Context, trackIDs []string) ([]model.Comment, error) {
	comments := make([]model.Comment, 0)
	if len(trackIDs) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).Where("track_id IN ?", trackIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// LikesFor 批量获取多个音轨的点赞记录
func (r *TrackRepository) LikesFor(ctx context.Context, trackIDs []string) ([]model.TrackLike, error) {
	likes := make([]model.TrackLike, 0)
	if len(trackIDs) == 0 {
		return likes, nil
	}
	err := r.db.WithContext(ctx).Where("track_id IN ?", trackIDs).Order("id ASC").Find(&likes).Error
	return likes, err
}

// ToggleLike 在一个事务里切换点赞状态
// 删除成功则计数减一，否则插入点赞记录（唯一索引冲突时不插入）并在插入成功时加一
func (r *TrackRepository) ToggleLike(ctx context.Context, trackID, sessionID string) (liked bool, likes int, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var track model.Track
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", trackID).First(&track).Error; err != nil {
			return notFound(err)
		}

		deleted := tx.Where("track_id = ? AND user_session_id = ?", trackID, sessionID).Delete(&model.TrackLike{})
		if deleted.Error != nil {
			return deleted.Error
		}

		delta := 0
		if deleted.RowsAffected > 0 {
			delta = -1
		} else {
			inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.TrackLike{TrackID: trackID, UserSessionID: sessionID})
			if inserted.Error != nil {
				return inserted.Error
			}
			liked = true
			if inserted.RowsAffected > 0 {
				delta = 1
			}
		}

		if delta != 0 {
			if err := tx.Model(&model.Track{}).Where("id = ?", trackID).
				Update("likes", gorm.Expr("likes + ?", delta)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("id = ?", trackID).First(&track).Error; err != nil {
			return err
		}
		likes = track.Likes
		return nil
	})
	return liked, likes, err
}

// AddComment 创建评论
func (r *TrackRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
