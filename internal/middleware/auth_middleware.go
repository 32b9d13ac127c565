package middleware

import (
	"strings"

	"ghgp/internal/models"
	"ghgp/internal/rbac"
	"ghgp/internal/services"
	"ghgp/pkg/jwt"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		userService: services.NewUserService(),
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 要求登录
//
// 每个请求都重新加载用户，保证停用、改角色立即生效，不依赖token内容。
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		// 提取token
		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取用户信息
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		// 检查用户状态
		if !user.IsActive {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("role", user.Role)
		if user.CompanyID != nil {
			c.Set("company_id", *user.CompanyID)
		}
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireFeature 要求特定功能权限
//
// 未知角色或未知功能键一律拒绝。
func (m *AuthMiddleware) RequireFeature(featureKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		role := roleVal.(models.Role)
		if !rbac.HasPermission(role, featureKey) {
			response.Forbidden(c, "没有权限执行此操作")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole 要求特定角色
func (m *AuthMiddleware) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		role := roleVal.(models.Role)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "没有权限执行此操作")
		c.Abort()
	}
}

// RequireCompanyVerified 要求用户所属公司已通过认证
//
// 管理员不绑定公司，不受此限制。
func (m *AuthMiddleware) RequireCompanyVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		user := userVal.(*models.User)
		if user.Role == models.RoleAdmin {
			c.Next()
			return
		}

		if user.CompanyID == nil {
			response.Forbidden(c, "用户未绑定公司")
			c.Abort()
			return
		}
		if user.Company == nil || user.Company.VerificationStatus != models.CompanyStatusVerified {
			response.Forbidden(c, "公司尚未通过认证，暂不能使用此功能")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCompanyID 从上下文取当前用户的公司ID
func GetCompanyID(c *gin.Context) (uint, bool) {
	val, exists := c.Get("company_id")
	if !exists {
		return 0, false
	}
	return val.(uint), true
}

// GetUserID 从上下文取当前用户ID
func GetUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

// GetRole 从上下文取当前用户角色
func GetRole(c *gin.Context) models.Role {
	return c.MustGet("role").(models.Role)
}
