package jwt

import (
	"strings"

	"tsound-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextSessionIDKey 会话ID在gin.Context中的键名
	ContextSessionIDKey = "session_id"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

// OptionalAuth 可选认证中间件
// 携带有效的 Authorization: Bearer <token> 时把用户信息写入 Context，否则原样放行
func (s *JWTService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("忽略无效的JWT", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Set(ContextSessionIDKey, claims.SessionID)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// BearerToken 从 Authorization 头中取出 token
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GetUserID 从gin.Context中获取用户ID
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// GetSessionID 从gin.Context中获取会话ID
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionIDKey)
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if cc, ok := claims.(*CustomClaims); ok {
			return cc
		}
	}
	return nil
}
