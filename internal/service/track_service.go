package service

import (
	"context"
	"errors"
	"fmt"

	"tsound-server/internal/dto"
	"tsound-server/internal/model"
	"tsound-server/internal/repository"
	"tsound-server/pkg/apperr"

	"github.com/google/uuid"
)

// TrackService 音轨上传、点赞与评论
type TrackService struct {
	tracks *repository.TrackRepository
	now    Clock
}

// NewTrackService 创建TrackService实例
func NewTrackService(tracks *repository.TrackRepository) *TrackService {
	return &TrackService{tracks: tracks, now: utcNow}
}

// SetClock 替换时间源
func (s *TrackService) SetClock(c Clock) { s.now = c }

// UploadTrackInput 上传参数
type UploadTrackInput struct {
	ID       string
	Title    string
	Artist   string
	AudioURL string
	CoverURL string
}

// AddCommentInput 评论参数
type AddCommentInput struct {
	TrackID   string
	CommentID string
	Text      string
	UserName  *string
}

// LikeResult 点赞切换结果
type LikeResult struct {
	Liked bool
	Likes int
}

// ListTracks 全部音轨，附带按音轨聚合的评论与点赞用户
func (s *TrackService) ListTracks(ctx context.Context) ([]dto.TrackInfo, error) {
	tracks, err := s.tracks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}

	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	comments, err := s.tracks.CommentsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	likes, err := s.tracks.LikesFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	commentsByTrack := make(map[string][]dto.CommentInfo, len(tracks))
	for _, c := range comments {
		commentsByTrack[c.TrackID] = append(commentsByTrack[c.TrackID], dto.CommentInfo{
			ID:        c.ID,
			UserID:    c.UserSessionID,
			UserName:  c.UserName,
			Text:      c.Text,
			Timestamp: dto.Timestamp(c.CreatedAt),
		})
	}
	likersByTrack := make(map[string][]string, len(tracks))
	for _, l := range likes {
		likersByTrack[l.TrackID] = append(likersByTrack[l.TrackID], l.UserSessionID)
	}

	out := make([]dto.TrackInfo, 0, len(tracks))
	for _, t := range tracks {
		info := dto.TrackInfo{
			ID:          t.ID,
			Title:       t.Title,
			Artist:      t.Artist,
			URL:         t.AudioURL,
			CoverURL:    t.CoverURL,
			Likes:       t.Likes,
			LikedBy:     likersByTrack[t.ID],
			Comments:    commentsByTrack[t.ID],
			PlaylistIDs: []string{},
		}
		if info.LikedBy == nil {
			info.LikedBy = []string{}
		}
		if info.Comments == nil {
			info.Comments = []dto.CommentInfo{}
		}
		out = append(out, info)
	}
	return out, nil
}

// Upload 上传音轨，归属于调用方会话
func (s *TrackService) Upload(ctx context.Context, sessionID string, in UploadTrackInput) (string, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	track := &model.Track{
		ID:            id,
		Title:         in.Title,
		Artist:        in.Artist,
		AudioURL:      in.AudioURL,
		CoverURL:      in.CoverURL,
		UserSessionID: sessionOrAnonymous(sessionID),
		CreatedAt:     s.now(),
	}
	if err := s.tracks.Create(ctx, track); err != nil {
		return "", fmt.Errorf("create track: %w", err)
	}
	return id, nil
}

// ToggleLike 切换调用方对音轨的点赞，每次调用翻转一次状态
func (s *TrackService) ToggleLike(ctx context.Context, sessionID, trackID string) (*LikeResult, error) {
	liked, likes, err := s.tracks.ToggleLike(ctx, trackID, sessionOrAnonymous(sessionID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Track not found")
		}
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return &LikeResult{Liked: liked, Likes: likes}, nil
}

// AddComment 添加评论，未提供昵称时使用默认名
func (s *TrackService) AddComment(ctx context.Context, sessionID string, in AddCommentInput) (string, error) {
	if in.TrackID == "" {
		return "", apperr.Validation("trackId required")
	}
	id := in.CommentID
	if id == "" {
		id = uuid.NewString()
	}
	name := model.DefaultCommenterName
	if in.UserName != nil && *in.UserName != "" {
		name = *in.UserName
	}
	comment := &model.Comment{
		ID:            id,
		TrackID:       in.TrackID,
		UserSessionID: sessionOrAnonymous(sessionID),
		UserName:      name,
		Text:          in.Text,
		CreatedAt:     s.now(),
	}
	if err := s.tracks.AddComment(ctx, comment); err != nil {
		return "", fmt.Errorf("add comment: %w", err)
	}
	return id, nil
}

func sessionOrAnonymous(sessionID string) string {
	if sessionID == "" {
		return model.AnonymousSession
	}
	return sessionID
}
