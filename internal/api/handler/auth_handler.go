package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Yvesthior/moncareme-agd/internal/service"
	"github.com/Yvesthior/moncareme-agd/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Logout 注销当前 Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := GetTokenMeta(c)

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		if errors.Is(err, service.ErrTokenIDMissing) {
			response.BadRequest(c, response.CodeInvalidParams, "Token 缺少 jti，无法注销")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
