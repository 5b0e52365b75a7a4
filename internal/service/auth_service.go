package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/internal/dto"
	"lost-university/backend/pkg/jwt"
	"lost-university/backend/pkg/redis"
)

var (
	ErrEmptySubject = errors.New("Token 主体不能为空")
	ErrInvalidRole  = errors.New("角色无效")
)

// Revocation Token 吊销列表
type Revocation interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewRevocation Redis 可用时使用 Redis 黑名单，否则使用进程内列表
func NewRevocation(rdb *redis.Client) Revocation {
	if rdb != nil {
		return &redisRevocation{rdb: rdb}
	}
	return &memoryRevocation{revoked: make(map[string]time.Time)}
}

// AuthService 维护者 Token 业务接口
type AuthService interface {
	// Issue 签发 Token（命令行工具使用）
	Issue(subject, role string, ttl time.Duration) (string, error)
	// Authenticate 解析 Token 并检查是否已吊销
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
	TokenInfo(claims *jwt.Claims) *dto.TokenInfoResponse
	Revoke(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	jwtMgr     *jwt.Manager
	revocation Revocation
	logger     *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(jwtMgr *jwt.Manager, revocation Revocation, logger *zap.Logger) AuthService {
	return &authService{
		jwtMgr:     jwtMgr,
		revocation: revocation,
		logger:     logger,
	}
}

func (s *authService) Issue(subject, role string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	if role != jwt.RoleAdmin {
		return "", ErrInvalidRole
	}
	token, err := s.jwtMgr.GenerateAccessToken(subject, role, ttl)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return "", err
	}
	return token, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "access" {
		return nil, jwt.ErrTokenInvalid
	}

	revoked, err := s.revocation.IsRevoked(ctx, claims.ID)
	if err != nil {
		// 黑名单不可用时放行，与限流降级策略一致
		s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		return claims, nil
	}
	if revoked {
		return nil, jwt.ErrTokenInvalid
	}
	return claims, nil
}

func (s *authService) TokenInfo(claims *jwt.Claims) *dto.TokenInfoResponse {
	resp := &dto.TokenInfoResponse{
		Subject: claims.Subject,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.Format(time.RFC3339)
	}
	return resp
}

func (s *authService) Revoke(ctx context.Context, claims *jwt.Claims) error {
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.revocation.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("吊销 Token 失败", zap.String("subject", claims.Subject), zap.Error(err))
		return err
	}
	s.logger.Info("Token 已吊销", zap.String("subject", claims.Subject), zap.String("jti", claims.ID))
	return nil
}

// ── Redis ──

type redisRevocation struct {
	rdb *redis.Client
}

func (r *redisRevocation) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.rdb.BlacklistToken(ctx, jti, ttl)
}

func (r *redisRevocation) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.rdb.IsBlacklisted(ctx, jti)
}

// ── 进程内 ──

type memoryRevocation struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *memoryRevocation) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (r *memoryRevocation) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(r.revoked, jti)
		return false, nil
	}
	return true, nil
}
