package users

import (
	"context"
	"errors"
	"net/http"

	"algobench/internal/database"
	"algobench/internal/dto"
	"algobench/internal/logging"
	"algobench/internal/middleware"
	"algobench/internal/model"
	"algobench/internal/service"
	"algobench/internal/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var hashPassword = service.HashPassword

// UserStore 管理員端點使用的 repository
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, role *model.Role, active *bool) (*model.User, error)
}

func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.HTTPError{Message: "user not found"})
	case errors.Is(err, store.ErrEmailTaken):
		return c.JSON(http.StatusConflict, dto.HTTPError{Message: "email already registered"})
	case errors.Is(err, database.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "database unavailable"})
	}
	logging.From(c).WithError(err).Error("user store failed")
	return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "internal server error"})
}

func parseID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

// @Summary     Get current user info
// @Description 透過 JWT Token 取得當前使用者詳細資訊
// @Tags        users
// @Produce     json
// @Success     200 {object} dto.UserResponse
// @Failure     401 {object} dto.HTTPError
// @Failure     403 {object} dto.HTTPError
// @Security    OAuth2Password
// @Router      /api/v1/users/me [get]
func GetMeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user := middleware.CurrentUser(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "invalid or missing token"})
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}

// @Summary     Create a new user
// @Description 管理員建立帳號 (Email 會去除空白並轉小寫)，角色預設 user
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     dto.CreateUserRequest true "使用者資料"
// @Success     201  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError "Email 已被使用"
// @Failure     500  {object} dto.HTTPError
// @Security    OAuth2Password
// @Router      /api/v1/admin/users [post]
func CreateUserHandler(users UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to hash password"})
		}

		user, err := users.Create(c.Request().Context(), model.NewUser(req.Email, hash, model.Role(req.Role)))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.NewUserResponse(user))
	}
}

// @Summary     Get a user by ID
// @Description 透過 ID 查詢並回傳使用者詳細資料
// @Tags        admin
// @Produce     json
// @Param       id   path      string  true  "使用者 ID (UUID)"
// @Success     200  {object}  dto.UserResponse
// @Failure     400  {object}  dto.HTTPError  "參數錯誤"
// @Failure     404  {object}  dto.HTTPError  "使用者不存在"
// @Failure     500  {object}  dto.HTTPError  "伺服器錯誤"
// @Security    OAuth2Password
// @Router      /api/v1/admin/users/{id} [get]
func GetUserHandler(users UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		user, err := users.GetByID(c.Request().Context(), id)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}

// @Summary     Update a user by ID
// @Description 更新角色或啟用狀態；只更新有給的欄位。使用者不會被刪除，只會停用
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id   path     string                true "使用者 ID (UUID)"
// @Param       body body     dto.UpdateUserRequest true "更新內容"
// @Success     200  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Failure     503  {object} dto.HTTPError
// @Security    OAuth2Password
// @Router      /api/v1/admin/users/{id} [patch]
func UpdateUserHandler(users UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}

		var req dto.UpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}
		if req.Role == nil && req.IsActive == nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "nothing to update"})
		}

		// 管理員不能把自己停用或降級
		if me := middleware.CurrentUser(c); me != nil && me.ID == id {
			if (req.IsActive != nil && !*req.IsActive) || (req.Role != nil && model.Role(*req.Role) != model.RoleAdmin) {
				return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "cannot demote or deactivate yourself"})
			}
		}

		var role *model.Role
		if req.Role != nil {
			r := model.Role(*req.Role)
			role = &r
		}
		user, err := users.Update(c.Request().Context(), id, role, req.IsActive)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}
