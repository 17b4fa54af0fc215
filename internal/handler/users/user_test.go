package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"algobench/internal/database"
	"algobench/internal/middleware"
	"algobench/internal/model"
	"algobench/internal/service"
	"algobench/internal/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubValidator struct{ err error }

func (s *stubValidator) Validate(i interface{}) error { return s.err }

type FakeUserStore struct {
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateFn  func(ctx context.Context, u *model.User) (*model.User, error)
	UpdateFn  func(ctx context.Context, id uuid.UUID, role *model.Role, active *bool) (*model.User, error)
}

func (f *FakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if f.GetByIDFn == nil {
		panic("unexpected GetByID")
	}
	return f.GetByIDFn(ctx, id)
}

func (f *FakeUserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if f.CreateFn == nil {
		panic("unexpected Create")
	}
	return f.CreateFn(ctx, u)
}

func (f *FakeUserStore) Update(ctx context.Context, id uuid.UUID, role *model.Role, active *bool) (*model.User, error) {
	if f.UpdateFn == nil {
		panic("unexpected Update")
	}
	return f.UpdateFn(ctx, id, role, active)
}

func newJSONCtx(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newIDCtx(e *echo.Echo, method, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONCtx(e, method, body)
	c.SetPath("/admin/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func restore() {
	hashPassword = service.HashPassword
}

func TestGetMeHandler(t *testing.T) {
	e := echo.New()

	ctx, rec := newJSONCtx(e, http.MethodGet, "")
	require.NoError(t, GetMeHandler()(ctx))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	u := model.NewUser("alice@example.com", "secret-hash", model.RoleUser)
	ctx, rec = newJSONCtx(e, http.MethodGet, "")
	ctx.Set(middleware.ContextUserKey, u)
	require.NoError(t, GetMeHandler()(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"email":"alice@example.com"`)
	require.Contains(t, rec.Body.String(), u.ID.String())
	require.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestCreateUserHandler(t *testing.T) {
	e := echo.New()

	t.Run("bind error", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		ctx, rec := newJSONCtx(e, http.MethodPost, "{")
		require.NoError(t, CreateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid request body")
	})

	t.Run("validate error", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{err: errors.New("v")}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","password":"p"}`)
		require.NoError(t, CreateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("hash error", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		hashPassword = func(string) (string, error) { return "", errors.New("hash") }
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","password":"p"}`)
		require.NoError(t, CreateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "failed to hash password")
	})

	t.Run("email taken", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		hashPassword = func(string) (string, error) { return "h", nil }
		users := &FakeUserStore{CreateFn: func(context.Context, *model.User) (*model.User, error) {
			return nil, fmt.Errorf("CreateUser: %w", store.ErrEmailTaken)
		}}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","password":"p"}`)
		require.NoError(t, CreateUserHandler(users)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("db unavailable", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		hashPassword = func(string) (string, error) { return "h", nil }
		users := &FakeUserStore{CreateFn: func(context.Context, *model.User) (*model.User, error) {
			return nil, database.ErrUnavailable
		}}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","password":"p"}`)
		require.NoError(t, CreateUserHandler(users)(ctx))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		now := time.Now().UTC()
		hashPassword = func(p string) (string, error) { require.Equal(t, "p", p); return "h", nil }
		var got *model.User
		users := &FakeUserStore{CreateFn: func(_ context.Context, u *model.User) (*model.User, error) {
			got = u
			u.CreatedAt = now
			return u, nil
		}}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":" Alice@EXAMPLE.com ","password":"p","role":"admin"}`)
		require.NoError(t, CreateUserHandler(users)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "alice@example.com", got.Email)
		require.Equal(t, "h", got.HashedPassword)
		require.Equal(t, model.RoleAdmin, got.Role)
		require.True(t, got.IsActive)
		require.Contains(t, rec.Body.String(), got.ID.String())
	})

	t.Run("default role", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		hashPassword = func(string) (string, error) { return "h", nil }
		var got *model.User
		users := &FakeUserStore{CreateFn: func(_ context.Context, u *model.User) (*model.User, error) {
			got = u
			return u, nil
		}}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"b@b.com","password":"p"}`)
		require.NoError(t, CreateUserHandler(users)(ctx))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, model.RoleUser, got.Role)
	})
}

func TestGetUserHandler(t *testing.T) {
	e := echo.New()
	id := uuid.New()

	t.Run("bad id", func(t *testing.T) {
		ctx, rec := newIDCtx(e, http.MethodGet, "x", "")
		require.NoError(t, GetUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		users := &FakeUserStore{GetByIDFn: func(context.Context, uuid.UUID) (*model.User, error) {
			return nil, fmt.Errorf("GetUserByID: %w", store.ErrNotFound)
		}}
		ctx, rec := newIDCtx(e, http.MethodGet, id.String(), "")
		require.NoError(t, GetUserHandler(users)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("other error", func(t *testing.T) {
		users := &FakeUserStore{GetByIDFn: func(context.Context, uuid.UUID) (*model.User, error) {
			return nil, errors.New("boom")
		}}
		ctx, rec := newIDCtx(e, http.MethodGet, id.String(), "")
		require.NoError(t, GetUserHandler(users)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "internal server error")
		require.NotContains(t, rec.Body.String(), "boom")
	})

	t.Run("success", func(t *testing.T) {
		users := &FakeUserStore{GetByIDFn: func(_ context.Context, got uuid.UUID) (*model.User, error) {
			require.Equal(t, id, got)
			return &model.User{ID: id, Email: "e@x.com", Role: model.RoleUser, IsActive: true}, nil
		}}
		ctx, rec := newIDCtx(e, http.MethodGet, id.String(), "")
		require.NoError(t, GetUserHandler(users)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), id.String())
	})
}

func TestUpdateUserHandler(t *testing.T) {
	e := echo.New()
	e.Validator = &stubValidator{}
	id := uuid.New()

	t.Run("bad id", func(t *testing.T) {
		ctx, rec := newIDCtx(e, http.MethodPatch, "x", `{}`)
		require.NoError(t, UpdateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bind error", func(t *testing.T) {
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), "{")
		require.NoError(t, UpdateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), `{}`)
		require.NoError(t, UpdateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "nothing to update")
	})

	t.Run("self deactivate", func(t *testing.T) {
		me := &model.User{ID: id, Role: model.RoleAdmin, IsActive: true}
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), `{"is_active":false}`)
		ctx.Set(middleware.ContextUserKey, me)
		require.NoError(t, UpdateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		ctx, rec = newIDCtx(e, http.MethodPatch, id.String(), `{"role":"user"}`)
		ctx.Set(middleware.ContextUserKey, me)
		require.NoError(t, UpdateUserHandler(&FakeUserStore{})(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		users := &FakeUserStore{UpdateFn: func(context.Context, uuid.UUID, *model.Role, *bool) (*model.User, error) {
			return nil, fmt.Errorf("UpdateUser: %w", store.ErrNotFound)
		}}
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), `{"is_active":false}`)
		require.NoError(t, UpdateUserHandler(users)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("db unavailable applies nothing", func(t *testing.T) {
		// 角色與狀態一起送進同一次 Update，失敗時不會有一半已寫入
		calls := 0
		users := &FakeUserStore{UpdateFn: func(_ context.Context, got uuid.UUID, role *model.Role, active *bool) (*model.User, error) {
			calls++
			require.Equal(t, id, got)
			require.NotNil(t, role)
			require.Equal(t, model.RoleAdmin, *role)
			require.NotNil(t, active)
			require.False(t, *active)
			return nil, fmt.Errorf("UpdateUser: %w", database.ErrUnavailable)
		}}
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), `{"role":"admin","is_active":false}`)
		ctx.Set(middleware.ContextUserKey, &model.User{ID: uuid.New(), Role: model.RoleAdmin})
		require.NoError(t, UpdateUserHandler(users)(ctx))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, 1, calls)
	})

	t.Run("other error", func(t *testing.T) {
		users := &FakeUserStore{UpdateFn: func(context.Context, uuid.UUID, *model.Role, *bool) (*model.User, error) {
			return nil, errors.New("pq: relation users does not exist")
		}}
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), `{"role":"user"}`)
		require.NoError(t, UpdateUserHandler(users)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "relation")
	})

	t.Run("success", func(t *testing.T) {
		users := &FakeUserStore{UpdateFn: func(_ context.Context, got uuid.UUID, role *model.Role, active *bool) (*model.User, error) {
			require.Equal(t, id, got)
			require.Nil(t, role)
			require.NotNil(t, active)
			return &model.User{ID: id, Email: "e@x.com", Role: model.RoleUser, IsActive: *active}, nil
		}}
		ctx, rec := newIDCtx(e, http.MethodPatch, id.String(), `{"is_active":false}`)
		ctx.Set(middleware.ContextUserKey, &model.User{ID: uuid.New(), Role: model.RoleAdmin})
		require.NoError(t, UpdateUserHandler(users)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"is_active":false`)
		require.Contains(t, rec.Body.String(), `"role":"user"`)
	})
}
