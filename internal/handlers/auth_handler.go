package handlers

import (
	"time"

	"ghgp/internal/models"
	"ghgp/internal/rbac"
	"ghgp/internal/services"
	"ghgp/pkg/jwt"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService    *services.UserService
	companyService *services.CompanyService
	jwtManager     *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, companyService *services.CompanyService) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		companyService: companyService,
		jwtManager:     jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID              uint        `json:"id"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	Role            models.Role `json:"role"`
	CompanyID       *uint       `json:"company_id"`
	CompanyName     string      `json:"company_name,omitempty"`
	CompanyVerified bool        `json:"company_verified"`
	AccessiblePages []string    `json:"accessible_pages"`
}

func buildUserInfo(user *models.User) UserInfo {
	info := UserInfo{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role,
		CompanyID:       user.CompanyID,
		AccessiblePages: rbac.AccessiblePages(user.Role),
	}
	if user.Company != nil {
		info.CompanyName = user.Company.CompanyName
		info.CompanyVerified = user.Company.VerificationStatus == models.CompanyStatusVerified
	}
	return info
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 检查用户状态
	if !user.IsActive {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	var companyID uint
	companyVerified := false
	if user.CompanyID != nil {
		companyID = *user.CompanyID
	}
	if user.Company != nil {
		companyVerified = user.Company.VerificationStatus == models.CompanyStatusVerified
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(
		user.ID,
		user.Username,
		string(user.Role),
		companyID,
		companyVerified,
	)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间
	if err := h.userService.UpdateLastLogin(user.ID); err != nil {
		// 记录日志但不影响登录流程
	}

	// 计算过期时间
	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      buildUserInfo(user),
	}

	response.Success(c, resp)
}

// Logout 用户登出
//
// JWT无服务端会话，登出由客户端丢弃token完成。
func (h *AuthHandler) Logout(c *gin.Context) {
	response.SuccessWithMessage(c, "登出成功", nil)
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	newToken, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()
	response.Success(c, gin.H{
		"token":      newToken,
		"expires_at": expiresAt,
	})
}

// Me 获取当前用户完整信息
func (h *AuthHandler) Me(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	response.Success(c, buildUserInfo(user))
}
