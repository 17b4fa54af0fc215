// File: internal/service/authenticator.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"algobench/internal/model"
	"algobench/internal/store"

	"github.com/sirupsen/logrus"
)

// UserRepository 以 email 查詢使用者；找不到時回傳 store.ErrNotFound
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticator 由 bearer token 解析目前使用者，並處理帳密登入
type Authenticator struct {
	tokens *TokenService
	users  UserRepository
	log    logrus.FieldLogger
}

func NewAuthenticator(tokens *TokenService, users UserRepository, log logrus.FieldLogger) *Authenticator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Authenticator{tokens: tokens, users: users, log: log}
}

// Resolve 驗證 token → 取出 sub (email) → 查詢使用者 → 檢查是否啟用
func (a *Authenticator) Resolve(ctx context.Context, token string) (*model.User, error) {
	subject, err := a.tokens.Verify(token, DefaultLeeway)
	if err != nil {
		a.log.WithError(err).Debug("token rejected")
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Resolve: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// RequireAdmin 只允許管理員
func RequireAdmin(user *model.User) (*model.User, error) {
	if user == nil || !user.IsAdmin() {
		return nil, ErrInsufficientRole
	}
	return user, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// timingHash 查無使用者時仍做一次 bcrypt 比對
func timingHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("algobench-timing-equalizer")
	})
	return dummyHash
}

// Login 以 email 與密碼驗證；查無使用者與密碼錯誤都回傳 ErrInvalidCredentials
func (a *Authenticator) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		VerifyPassword(password, timingHash())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}

	if !VerifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// IssueToken 以使用者 email 作為 sub 簽發存取令牌
func (a *Authenticator) IssueToken(user *model.User) (string, time.Time, error) {
	return a.tokens.Issue(user.Email)
}
