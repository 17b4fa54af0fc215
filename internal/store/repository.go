package store

import (
	"context"

	"algobench/internal/database"
	"algobench/internal/model"

	"github.com/google/uuid"
)

// Users 每次呼叫都從 Factory 借一個 session，用完即歸還
type Users struct {
	sessions *database.Factory
}

func NewUsers(f *database.Factory) *Users {
	return &Users{sessions: f}
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u *model.User
	err := r.sessions.WithSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		u, err = GetUserByEmail(ctx, s, email)
		return err
	})
	return u, err
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u *model.User
	err := r.sessions.WithSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		u, err = GetUserByID(ctx, s, id)
		return err
	})
	return u, err
}

func (r *Users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	var created *model.User
	err := r.sessions.WithSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		created, err = CreateUser(ctx, s, u)
		return err
	})
	return created, err
}

// Update 角色與啟用狀態在同一個 statement 內更新，不會只套用一半
func (r *Users) Update(ctx context.Context, id uuid.UUID, role *model.Role, active *bool) (*model.User, error) {
	var u *model.User
	err := r.sessions.WithSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		u, err = UpdateUser(ctx, s, id, role, active)
		return err
	})
	return u, err
}
