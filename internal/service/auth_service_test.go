package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/config"
	"lost-university/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *jwt.Manager) {
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
	return NewAuthService(jwtMgr, NewRevocation(nil), zap.NewNop()), jwtMgr
}

// ── Issue / Authenticate 测试 ──

func TestAuthService_IssueAndAuthenticate(t *testing.T) {
	svc, _ := setupTestAuthService()
	ctx := context.Background()

	token, err := svc.Issue("maintainer", jwt.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("Issue 应成功: %v", err)
	}

	claims, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate 应成功: %v", err)
	}
	info := svc.TokenInfo(claims)
	if info.Subject != "maintainer" || info.Role != jwt.RoleAdmin || info.ExpiresAt == "" {
		t.Errorf("Token 信息错误: %+v", info)
	}
}

func TestAuthService_Issue_InvalidInput(t *testing.T) {
	svc, _ := setupTestAuthService()

	if _, err := svc.Issue("", jwt.RoleAdmin, 0); !errors.Is(err, ErrEmptySubject) {
		t.Errorf("期望 ErrEmptySubject，实际: %v", err)
	}
	if _, err := svc.Issue("maintainer", "student", 0); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("期望 ErrInvalidRole，实际: %v", err)
	}
}

func TestAuthService_Authenticate_InvalidToken(t *testing.T) {
	svc, _ := setupTestAuthService()

	if _, err := svc.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

// ── Revoke 测试 ──

func TestAuthService_Revoke(t *testing.T) {
	svc, _ := setupTestAuthService()
	ctx := context.Background()

	token, _ := svc.Issue("maintainer", jwt.RoleAdmin, time.Hour)
	claims, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate 应成功: %v", err)
	}

	if err := svc.Revoke(ctx, claims); err != nil {
		t.Fatalf("Revoke 应成功: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("吊销后期望 ErrTokenInvalid，实际: %v", err)
	}

	// 其他 Token 不受影响
	other, _ := svc.Issue("maintainer", jwt.RoleAdmin, time.Hour)
	if _, err := svc.Authenticate(ctx, other); err != nil {
		t.Errorf("未吊销的 Token 应可用: %v", err)
	}
}

func TestMemoryRevocation_Expires(t *testing.T) {
	r := NewRevocation(nil)
	ctx := context.Background()

	_ = r.Revoke(ctx, "jti-1", -time.Second)
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("过期的吊销记录应被忽略")
	}
	_ = r.Revoke(ctx, "jti-2", time.Minute)
	if revoked, _ := r.IsRevoked(ctx, "jti-2"); !revoked {
		t.Error("期望 jti-2 已吊销")
	}
}
