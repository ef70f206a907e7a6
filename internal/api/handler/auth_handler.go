package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/daily-poem/internal/api/middleware"
	"github.com/d60-Lab/daily-poem/pkg/response"
)

type tokenRequest struct {
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// IssueToken 管理员密码换取 JWT
// @Summary 获取管理员令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body tokenRequest true "管理员密码"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/token [post]
func (h *Handler) IssueToken(c *gin.Context) {
	if !h.auth.Enabled() || h.auth.AdminPasswordHash == "" {
		response.NotFound(c, "authentication is not configured")
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.auth.AdminPasswordHash), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}
	tok, exp, err := middleware.IssueAdminToken(h.auth.JWTSecret, h.auth.TokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: tok, ExpiresAt: exp.Unix()})
}
