package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req, false) {
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		fail(c, ah.log, "register", err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// Login accepts the account's username or email in "login"; "email" and
// "username" are read as fallbacks.
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Login    string `json:"login"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req, false) {
		return
	}
	login := req.Login
	if login == "" {
		login = req.Email
	}
	if login == "" {
		login = req.Username
	}
	token, user, err := ah.authService.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		fail(c, ah.log, "login", err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(ah.authService.AccessTTL().Seconds()),
		"user":         user,
	})
}
