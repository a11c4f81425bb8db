package handler

import (
	"net/http"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logic"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authLogic *logic.AuthLogic
}

func NewAuthHandler(db *gorm.DB, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		authLogic: logic.NewAuthLogic(db, cfg),
	}
}

// Register 注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.authLogic.Register(req.Username, req.Email, req.Password, model.UserRole(req.Role))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.authLogic.Login(req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// VerifyToken 校验当前token并返回用户信息
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	DataResponse(c, http.StatusOK, gin.H{"user": CurrentUser(c)})
}

// WalletNonce 签发钱包绑定用的随机数
func (h *AuthHandler) WalletNonce(c *gin.Context) {
	user := CurrentUser(c)

	nonce, err := h.authLogic.IssueWalletNonce(user.Id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"nonce": nonce})
}

// ConnectWallet 验证签名并绑定钱包地址
func (h *AuthHandler) ConnectWallet(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authLogic.ConnectWallet(CurrentUser(c).Id, req.Address, req.Signature)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"user": user})
}

// Logout 登出
// token本身无状态，服务端仅做确认，客户端负责丢弃token
func (h *AuthHandler) Logout(c *gin.Context) {
	DataResponse(c, http.StatusOK, gin.H{"logged_out": true})
}

// DisconnectWallet 解绑钱包
func (h *AuthHandler) DisconnectWallet(c *gin.Context) {
	if err := h.authLogic.DisconnectWallet(CurrentUser(c).Id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	DataResponse(c, http.StatusOK, gin.H{"disconnected": true})
}
