package handler

import (
	"strings"
	"time"

	"tsound-server/pkg/jwt"
	"tsound-server/pkg/logger"
	"tsound-server/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖，业务处理器为 nil 时对应接口返回 Database not configured
type Handlers struct {
	Auth      *AuthHandler
	Presence  *PresenceHandler
	Messenger *MessengerHandler
	Tracks    *TrackHandler
	Health    *HealthHandler
	Tokens    *jwt.JWTService
	WebSocket gin.HandlerFunc
}

// corsFor 浏览器预检由 cors 中间件直接应答，不带 Origin 的 OPTIONS 交给处理器
func corsFor(methods, headers string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              splitList(methods),
		AllowHeaders:              splitList(headers),
		MaxAge:                    24 * time.Hour,
		OptionsResponseStatusCode: 200,
	})
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// SetupRouter 创建gin引擎并注册全部路由
func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())

	if h.Health != nil {
		router.GET("/health", h.Health.Handle)
	}
	if h.WebSocket != nil {
		router.GET("/ws", h.WebSocket)
	}

	v1 := router.Group("/api/v1")
	{
		v1.Any("/auth", corsFor(authMethods, authHeaders), h.Auth.Handle)
		v1.Any("/online", corsFor(onlineMethods, onlineHeaders), h.Presence.Handle)
		v1.Any("/messenger", corsFor(messengerMethods, messengerHeaders), h.Messenger.Handle)

		tracks := []gin.HandlerFunc{corsFor(tracksMethods, tracksHeaders)}
		if h.Tokens != nil {
			tracks = append(tracks, h.Tokens.OptionalAuth())
		}
		tracks = append(tracks, h.Tracks.Handle)
		v1.Any("/tracks", tracks...)
	}

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Endpoint not found")
	})
	return router
}
