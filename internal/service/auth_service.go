package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tsound-server/config"
	"tsound-server/internal/dto"
	"tsound-server/internal/model"
	"tsound-server/internal/repository"
	"tsound-server/pkg/apperr"
	dbPkg "tsound-server/pkg/db"
	"tsound-server/pkg/jwt"
	"tsound-server/pkg/password"

	"github.com/google/uuid"
)

// AuthService 注册与登录
type AuthService struct {
	users          *repository.UserRepository
	tokens         *jwt.JWTService
	avatarTemplate string
	mirror         PresenceMirror
	now            Clock
}

// NewAuthService 创建AuthService实例，mirror 可为 nil
func NewAuthService(users *repository.UserRepository, tokens *jwt.JWTService, cfg config.AuthConfig, mirror PresenceMirror) *AuthService {
	if mirror == nil {
		mirror = noopMirror{}
	}
	return &AuthService{
		users:          users,
		tokens:         tokens,
		avatarTemplate: cfg.AvatarURLTemplate,
		mirror:         mirror,
		now:            utcNow,
	}
}

// SetClock 替换时间源
func (s *AuthService) SetClock(c Clock) { s.now = c }

// Register 注册
func (s *AuthService) Register(ctx context.Context, username, plainPassword string) (*dto.AuthResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, apperr.Validation("Username and password required")
	}

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Username already exists")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	avatar := s.AvatarURL(username)
	user := &model.User{
		SessionID:    uuid.NewString(),
		Username:     &username,
		PasswordHash: &hash,
		AvatarURL:    &avatar,
		Status:       model.StatusOnline,
		LastSeen:     now,
		CreatedAt:    now,
	}
	if err := s.users.CreateAuthUser(ctx, user); err != nil {
		// 并发注册同名用户时由唯一索引拦截
		if dbPkg.IsDuplicateKey(err) {
			return nil, apperr.Conflict("Username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.mirror.Touch(ctx, user.SessionID, now)
	return s.respond(user)
}

// Login 登录，成功后标记在线
func (s *AuthService) Login(ctx context.Context, username, plainPassword string) (*dto.AuthResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, apperr.Validation("Username and password required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("Invalid credentials")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.PasswordHash == nil || !password.Verify(plainPassword, *user.PasswordHash) {
		return nil, apperr.Auth("Invalid credentials")
	}

	now := s.now()
	if err := s.users.MarkOnline(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("mark online: %w", err)
	}
	user.Status = model.StatusOnline
	user.LastSeen = now

	s.mirror.Touch(ctx, user.SessionID, now)
	return s.respond(user)
}

// Logout 把会话标记为离线
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperr.Validation("sessionId required")
	}
	found, err := s.users.SetStatusBySession(ctx, sessionID, model.StatusOffline, s.now())
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if !found {
		return apperr.NotFound("Session not found")
	}
	return nil
}

// AvatarURL 由用户名推导头像地址
func (s *AuthService) AvatarURL(username string) string {
	seed := url.QueryEscape(username)
	if strings.Contains(s.avatarTemplate, "%s") {
		return fmt.Sprintf(s.avatarTemplate, seed)
	}
	return s.avatarTemplate + seed
}

func (s *AuthService) respond(user *model.User) (*dto.AuthResponse, error) {
	resp := &dto.AuthResponse{
		SessionID: user.SessionID,
		Username:  user.DisplayName(),
		UserID:    user.ID,
	}
	if user.AvatarURL != nil {
		resp.AvatarURL = *user.AvatarURL
	}
	if s.tokens != nil {
		token, err := s.tokens.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), user.SessionID, resp.Username)
		if err != nil {
			return nil, err
		}
		resp.AccessToken = token
	}
	return resp, nil
}
