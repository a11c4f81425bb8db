package handler

import (
	"net/http"
	"strings"

	"github.com/MaulRai/tiku/internal/logic"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/gin-gonic/gin"
)

const contextUserKey = "current_user"

// AuthMiddleware JWT认证中间件
func AuthMiddleware(authLogic *logic.AuthLogic) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			ErrorResponse(c, http.StatusUnauthorized, "缺少认证信息")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			ErrorResponse(c, http.StatusUnauthorized, "认证信息格式错误")
			c.Abort()
			return
		}

		user, err := authLogic.VerifyToken(token)
		if err != nil {
			ErrorResponse(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireRole 角色门禁中间件，需在AuthMiddleware之后使用
func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			ErrorResponse(c, http.StatusUnauthorized, "缺少认证信息")
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		ErrorResponse(c, http.StatusForbidden, "没有操作权限")
		c.Abort()
	}
}

// CurrentUser 取认证中间件写入的当前用户
func CurrentUser(c *gin.Context) *model.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}
