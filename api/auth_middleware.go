package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"panbot/model"
	"panbot/service"
)

// AdminAuthMiddleware 管理接口认证中间件。未配置密钥时不做校验
func AdminAuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil || !auth.Enabled() {
			c.Next()
			return
		}

		// 获取Authorization头
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Abort()
			respond(c, http.StatusUnauthorized, model.NewErrorResponse(http.StatusUnauthorized, "缺少认证令牌"))
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Abort()
			respond(c, http.StatusUnauthorized, model.NewErrorResponse(http.StatusUnauthorized, "无效的认证格式"))
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.Abort()
			respond(c, http.StatusUnauthorized, model.NewErrorResponse(http.StatusUnauthorized, "无效的认证令牌"))
			return
		}

		c.Set("admin", claims.Subject)
		c.Next()
	}
}
