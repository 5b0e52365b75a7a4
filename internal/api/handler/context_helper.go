package handler

import (
	"github.com/gin-gonic/gin"

	"lost-university/backend/pkg/jwt"
	"lost-university/backend/pkg/response"
)

// 上下文键，由中间件写入
const (
	CtxSessionID = "session_id"
	CtxClaims    = "claims"
	CtxSubject   = "subject"
	CtxRole      = "role"
)

// SessionID 当前请求的会话 ID；未经过 Session 中间件时为空（此时不读写会话缓存）
func SessionID(c *gin.Context) string {
	return c.GetString(CtxSessionID)
}

// MustGetClaims 从 Gin 上下文中安全提取 JWT 声明。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// MustGetSubject 从 Gin 上下文中安全提取维护者标识
func MustGetSubject(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxSubject)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
