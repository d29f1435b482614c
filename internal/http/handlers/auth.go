package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/supplesafe-backend/internal/http/middleware"
	"github.com/yungbote/supplesafe-backend/internal/http/response"
	"github.com/yungbote/supplesafe-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ok":   true,
		"user": gin.H{"id": user.ID, "username": user.Username},
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": res.AccessToken,
		"expires_in":   int(ah.authService.AccessTTL().Seconds()),
		"session":      res.Session,
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) Session(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	response.RespondOK(c, gin.H{
		"authenticated": sess.Authenticated(),
		"session":       sess,
	})
}
