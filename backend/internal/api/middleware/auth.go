package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/model"
	"learnhub/backend/pkg/jwt"
	"learnhub/backend/pkg/response"
)

// knownRoles 身份服务可能签发的角色，其余角色一律拒绝
var knownRoles = roleSet(model.RoleAdmin, model.RoleInstructor, model.RoleStudent)

// JWTAuth Bearer Token 校验中间件
// Token 由统一身份服务签发，本服务只校验签名、类型与角色，不维护会话
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c.GetHeader("Authorization"))
		if msg != "" {
			abortUnauthorized(c, msg)
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}
		if claims.TokenType != "access" {
			abortUnauthorized(c, "Token 类型无效")
			return
		}
		if !knownRoles[claims.Role] {
			abortUnauthorized(c, "Token 角色无效")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件，角色集合在注册路由时构建一次
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := roleSet(allowedRoles...)

	return func(c *gin.Context) {
		userRole := c.GetString("role")
		if userRole == "" {
			abortUnauthorized(c, "未认证")
			return
		}
		if !allowed[userRole] {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ── 辅助 ──

// bearerToken 从 Authorization 头取出 Token，失败时返回错误提示
// 认证方案名大小写不敏感
func bearerToken(header string) (string, string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "缺少认证头"
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "认证头格式无效"
	}
	return token, ""
}

func roleSet(roles ...string) map[string]bool {
	set := make(map[string]bool, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, 10002, msg)
	c.Abort()
}
