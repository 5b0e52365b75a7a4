package handler

import (
	"github.com/gin-gonic/gin"

	"lost-university/backend/internal/service"
	"lost-university/backend/pkg/response"
)

// AuthHandler 维护者 Token HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Me 当前 Token 信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	response.OK(c, h.authSvc.TokenInfo(claims))
}

// Revoke 吊销当前 Token
// POST /api/v1/auth/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	if err := h.authSvc.Revoke(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
