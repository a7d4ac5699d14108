package handler

import (
	"net/http"

	"tsound-server/internal/dto"
	"tsound-server/internal/service"
	"tsound-server/pkg/apperr"
	"tsound-server/pkg/jwt"
	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionHeader 音轨接口的调用方会话
const SessionHeader = "X-User-Session"

// TrackHandler 音轨列表、上传、点赞与评论
type TrackHandler struct {
	service *service.TrackService
}

// NewTrackHandler 创建TrackHandler实例
func NewTrackHandler(s *service.TrackService) *TrackHandler {
	return &TrackHandler{service: s}
}

type uploadTrackRequest struct {
	ID       flexibleID `json:"id"`
	Title    string     `json:"title"`
	Artist   string     `json:"artist"`
	AudioURL string     `json:"audioUrl"`
	CoverURL string     `json:"coverUrl"`
}

type trackActionRequest struct {
	TrackID   flexibleID `json:"trackId"`
	Action    string     `json:"action"`
	CommentID flexibleID `json:"commentId"`
	Text      string     `json:"text"`
	UserName  *string    `json:"userName"`
}

// Handle GET 列表，POST 上传，PUT 点赞/评论
func (h *TrackHandler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		response.Preflight(c, tracksMethods, tracksHeaders)
		return
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		response.MethodNotAllowed(c)
		return
	}
	if h == nil || h.service == nil {
		unavailable(c)
		return
	}

	switch c.Request.Method {
	case http.MethodGet:
		h.list(c)
	case http.MethodPost:
		h.upload(c)
	case http.MethodPut:
		h.act(c)
	}
}

func (h *TrackHandler) list(c *gin.Context) {
	tracks, err := h.service.ListTracks(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto.TrackList{Tracks: tracks})
}

func (h *TrackHandler) upload(c *gin.Context) {
	var req uploadTrackRequest
	if err := bindBody(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	id, err := h.service.Upload(c.Request.Context(), callerSession(c), service.UploadTrackInput{
		ID:       req.ID.String(),
		Title:    req.Title,
		Artist:   req.Artist,
		AudioURL: req.AudioURL,
		CoverURL: req.CoverURL,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "trackId": id})
}

func (h *TrackHandler) act(c *gin.Context) {
	var req trackActionRequest
	if err := bindBody(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "like":
		result, err := h.service.ToggleLike(ctx, callerSession(c), req.TrackID.String())
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, gin.H{"success": true, "liked": result.Liked, "likes": result.Likes})
	case "comment":
		id, err := h.service.AddComment(ctx, callerSession(c), service.AddCommentInput{
			TrackID:   req.TrackID.String(),
			CommentID: req.CommentID.String(),
			Text:      req.Text,
			UserName:  req.UserName,
		})
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, gin.H{"success": true, "commentId": id})
	default:
		response.Fail(c, apperr.MethodNotAllowed("Method not allowed"))
	}
}

// callerSession X-User-Session 优先，其次是有效JWT中的会话，都没有时由服务层记为 anonymous
func callerSession(c *gin.Context) string {
	if session := c.GetHeader(SessionHeader); session != "" {
		return session
	}
	return jwt.GetSessionID(c)
}
