package jwt

import (
	"errors"
	"ghgp/pkg/config"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims JWT声明
type JWTClaims struct {
	UserID          uint   `json:"user_id"`
	Username        string `json:"username"`
	Role            string `json:"role"`             // admin / manager / normal_user
	CompanyID       uint   `json:"company_id"`       // 所属公司（0表示未分配）
	CompanyVerified bool   `json:"company_verified"` // 公司是否已通过认证
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// GenerateToken 生成JWT令牌
func (manager *JWTManager) GenerateToken(userID uint, username, role string, companyID uint, companyVerified bool) (string, error) {
	claims := JWTClaims{
		UserID:          userID,
		Username:        username,
		Role:            role,
		CompanyID:       companyID,
		CompanyVerified: companyVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(manager.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "GHGP",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken 验证JWT令牌
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// 验证签名方法
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("意外的签名方法")
			}
			return []byte(manager.secretKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, errors.New("无法解析token声明")
	}

	return claims, nil
}

// RefreshToken 刷新令牌
func (manager *JWTManager) RefreshToken(tokenString string) (string, error) {
	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}

	return manager.GenerateToken(
		claims.UserID,
		claims.Username,
		claims.Role,
		claims.CompanyID,
		claims.CompanyVerified,
	)
}

// GetTokenDuration 获取令牌有效期
func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}

// 单例实现
var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager 获取全局JWT管理器实例
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		tokenDuration, err := time.ParseDuration(cfg.JWT.TokenDuration)
		if err != nil {
			tokenDuration = 24 * time.Hour
		}
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, tokenDuration)
	})
	return defaultManager
}
