// File: internal/service/token.go
package service

import (
	"fmt"
	"time"

	"algobench/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway 驗證 exp 時容許的時鐘誤差
const DefaultLeeway = 10 * time.Second

// 測試可覆寫
var (
	timeNow         = time.Now
	parseWithClaims = jwt.ParseWithClaims
)

// TokenService 依設定的演算法簽發與驗證存取令牌
type TokenService struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	ttl       time.Duration
}

// NewTokenService HS256 直接使用 JWT_SECRET；RS256 時 JWT_SECRET 為 PEM 格式的 RSA 私鑰
func NewTokenService(s *config.Settings) (*TokenService, error) {
	return newTokenService(s.JWTAlgorithm, s.JWTSecret.Reveal(), s.AccessTokenTTL())
}

func newTokenService(alg, secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	ts := &TokenService{ttl: ttl}
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		ts.method = jwt.SigningMethodHS256
		ts.signKey = []byte(secret)
		ts.verifyKey = []byte(secret)
	case jwt.SigningMethodRS256.Alg():
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("parse RS256 private key: %w", err)
		}
		ts.method = jwt.SigningMethodRS256
		ts.signKey = key
		ts.verifyKey = &key.PublicKey
	default:
		return nil, fmt.Errorf("unsupported JWT algorithm %q", alg)
	}
	return ts, nil
}

// TTL 預設有效期
func (ts *TokenService) TTL() time.Duration { return ts.ttl }

// Issue 以預設有效期簽發令牌
func (ts *TokenService) Issue(subject string) (string, time.Time, error) {
	return ts.IssueWithTTL(subject, ts.ttl)
}

// IssueWithTTL 簽發帶 sub、iat、exp 的令牌；ttl 為負時令牌一簽發即過期
func (ts *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, time.Time, error) {
	now := timeNow()
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: exp,
	}
	signed, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.signKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp.Time, nil
}

// Verify 驗證簽章、演算法與 exp（含 leeway），回傳 sub。
// 所有失敗都包裝 ErrInvalidToken。
func (ts *TokenService) Verify(tokenString string, leeway time.Duration) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := parseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return ts.verifyKey, nil },
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
