// Package app 组装仓储、服务与路由，供 cmd/server 和 cmd/invoke 共用
package app

import (
	"context"
	"time"

	"tsound-server/config"
	"tsound-server/internal/handler"
	"tsound-server/internal/repository"
	"tsound-server/internal/service"
	dbPkg "tsound-server/pkg/db"
	"tsound-server/pkg/jwt"
	redisPkg "tsound-server/pkg/redis"
	"tsound-server/pkg/websocket"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App 组装好的应用
type App struct {
	Router *gin.Engine
	Hub    *websocket.Manager
}

// New 组装应用；gdb 为 nil 时业务接口返回 Database not configured，rdb 为 nil 时不启用镜像
func New(cfg *config.Config, gdb *gorm.DB, rdb *goredis.Client) *App {
	tokens := jwt.NewJWTService(cfg.JWT)
	hub := websocket.NewManager()

	var redisCheck handler.HealthCheck
	var mirrorCount handler.PresenceCount
	var mirror service.PresenceMirror
	if rdb != nil {
		redisMirror := redisPkg.NewPresenceMirror(rdb, cfg.Presence.Window)
		mirror = redisMirror
		redisCheck = func(ctx context.Context) error { return redisPkg.HealthCheck(ctx, rdb) }
		mirrorCount = func(ctx context.Context) (int64, error) { return redisMirror.Count(ctx, time.Now().UTC()) }
	}

	handlers := handler.Handlers{Tokens: tokens}
	if gdb == nil {
		handlers.Health = handler.NewHealthHandler(nil, redisCheck).WithPresenceMirror(mirrorCount)
		return &App{Router: handler.SetupRouter(handlers), Hub: hub}
	}

	users := repository.NewUserRepository(gdb, cfg.Database.AuthUsersTable)
	presence := service.NewPresenceService(users, cfg.Presence.Window, mirror)

	handlers.Auth = handler.NewAuthHandler(service.NewAuthService(users, tokens, cfg.Auth, mirror))
	handlers.Presence = handler.NewPresenceHandler(presence)
	handlers.Messenger = handler.NewMessengerHandler(service.NewMessengerService(
		repository.NewMessageRepository(gdb),
		repository.NewChatRepository(gdb),
		users,
		presence,
		hub,
	))
	handlers.Tracks = handler.NewTrackHandler(service.NewTrackService(repository.NewTrackRepository(gdb)))
	handlers.Health = handler.NewHealthHandler(func(ctx context.Context) error { return dbPkg.HealthCheck(ctx, gdb) }, redisCheck).
		WithPresenceMirror(mirrorCount)
	handlers.WebSocket = websocket.NewHandler(hub, tokens, presence, cfg.WebSocket).Serve

	return &App{Router: handler.SetupRouter(handlers), Hub: hub}
}
