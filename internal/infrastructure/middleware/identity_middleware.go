package middleware

import (
	"strings"

	"campus_chat/internal/gateway/remote"
	"campus_chat/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextSelfKey gin 上下文中当前用户的键
const ContextSelfKey = "self"

// BearerIdentity 可选的身份提取
// 带 Bearer Token 时解析出当前用户放进上下文，并把 token 透传给远端网关；没有或无法解析时照常放行
func BearerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.Next()
			return
		}

		token := strings.TrimSpace(parts[1])
		c.Request = c.Request.WithContext(remote.WithToken(c.Request.Context(), token))
		self, err := jwt.ParseSelf(token)
		if err != nil {
			zap.L().Debug("bearer token 无法解析，忽略身份", zap.Error(err))
			c.Next()
			return
		}
		c.Set(ContextSelfKey, self)
		c.Next()
	}
}

// SelfFrom 取出 BearerIdentity 放入的当前用户，不存在时返回 nil
func SelfFrom(c *gin.Context) *jwt.Self {
	v, ok := c.Get(ContextSelfKey)
	if !ok {
		return nil
	}
	self, _ := v.(*jwt.Self)
	return self
}
