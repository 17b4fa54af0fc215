// File: internal/model/user.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid 是否為已知角色
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Role           Role      `db:"role" json:"role"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// NewUser 產生新的使用者記錄：客戶端產生 UUID，Email 正規化，角色預設 user
func NewUser(email, hashedPassword string, role Role) *User {
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:             uuid.New(),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		Role:           role,
		IsActive:       true,
	}
}

// IsAdmin 是否為管理員
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail 去除前後空白並轉小寫；寫入與查詢前都必須呼叫
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
