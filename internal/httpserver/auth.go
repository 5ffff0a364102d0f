package httpserver

import (
	"net/http"

	"customer-api/internal/service/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username   string `json:"username" binding:"required,max=255"`
	Password   string `json:"password" binding:"required,min=6"`
	DeviceName string `json:"device_name" binding:"omitempty,max=255"`
}

type authHandler struct {
	svc    AuthService
	logger *zap.Logger
}

func (h *authHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, bindingErrors(err))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), auth.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		DeviceName: req.DeviceName,
		IP:         c.ClientIP(),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "Login successful", gin.H{
		"user":  toUserResource(res.User),
		"token": tokenResource{AccessToken: res.AccessToken, TokenType: res.TokenType},
	})
}

func (h *authHandler) logout(c *gin.Context) {
	h.revoke(c, false, "Logged out successfully")
}

func (h *authHandler) logoutAll(c *gin.Context) {
	h.revoke(c, true, "Logged out from all devices successfully")
}

func (h *authHandler) revoke(c *gin.Context, allDevices bool, message string) {
	u, ok := currentUser(c)
	if !ok {
		unauthenticated(c)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), u, currentToken(c), allDevices); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, message, nil)
}

func (h *authHandler) me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		unauthenticated(c)
		return
	}
	respondOK(c, http.StatusOK, "User retrieved successfully", toUserResource(u))
}
