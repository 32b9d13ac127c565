package jwt

import (
	"testing"
	"time"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour)
}

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateToken(1, "alice", "manager", 3, true)
	if err != nil {
		t.Fatalf("生成token失败: %v", err)
	}

	claims, err := manager.VerifyToken(token)
	if err != nil {
		t.Fatalf("验证token失败: %v", err)
	}

	if claims.UserID != 1 || claims.Username != "alice" || claims.Role != "manager" {
		t.Errorf("claims不符: %+v", claims)
	}
	if claims.CompanyID != 3 || !claims.CompanyVerified {
		t.Errorf("公司信息不符: %+v", claims)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	manager := newTestManager()
	other := NewJWTManager("other-secret", time.Hour)

	token, err := manager.GenerateToken(1, "alice", "admin", 0, false)
	if err != nil {
		t.Fatalf("生成token失败: %v", err)
	}

	if _, err := other.VerifyToken(token); err == nil {
		t.Error("不同密钥签发的token不应通过验证")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken(1, "alice", "admin", 0, false)
	if err != nil {
		t.Fatalf("生成token失败: %v", err)
	}

	if _, err := manager.VerifyToken(token); err == nil {
		t.Error("过期token不应通过验证")
	}
}

func TestRefreshToken(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateToken(2, "bob", "normal_user", 5, false)
	if err != nil {
		t.Fatalf("生成token失败: %v", err)
	}

	refreshed, err := manager.RefreshToken(token)
	if err != nil {
		t.Fatalf("刷新token失败: %v", err)
	}

	claims, err := manager.VerifyToken(refreshed)
	if err != nil {
		t.Fatalf("验证刷新后token失败: %v", err)
	}
	if claims.UserID != 2 || claims.Role != "normal_user" || claims.CompanyID != 5 {
		t.Errorf("刷新后claims不符: %+v", claims)
	}
}
