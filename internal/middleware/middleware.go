package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"algobench/internal/database"
	"algobench/internal/model"
	"algobench/internal/service"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "user"

// 401 時統一訊息，不區分令牌無效或使用者不存在
const credentialsMessage = "could not validate credentials"

// Resolver 由 bearer token 取得目前使用者
type Resolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", unauthorized(c, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", unauthorized(c, "invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// MapAuthError 將驗證錯誤轉成對應的 HTTP 狀態
func MapAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
		return unauthorized(c, credentialsMessage)
	case errors.Is(err, service.ErrUserInactive):
		return echo.NewHTTPError(http.StatusForbidden, "inactive user")
	case errors.Is(err, service.ErrInsufficientRole):
		return echo.NewHTTPError(http.StatusForbidden, service.ErrInsufficientRole.Error())
	case errors.Is(err, database.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return err
}

func resolveUser(c echo.Context, auth Resolver) (*model.User, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	user, err := auth.Resolve(c.Request().Context(), token)
	if err != nil {
		return nil, MapAuthError(c, err)
	}
	return user, nil
}

// RequireUser 驗證 bearer token 並把 *model.User 放進 context
func RequireUser(auth Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolveUser(c, auth)
			if err != nil {
				return err
			}
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// RequireAdmin 同 RequireUser，另外要求管理員角色
func RequireAdmin(auth Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return RequireUser(auth)(func(c echo.Context) error {
			if _, err := service.RequireAdmin(CurrentUser(c)); err != nil {
				return MapAuthError(c, err)
			}
			return next(c)
		})
	}
}

// CurrentUser 取出 RequireUser 放入的使用者；未經驗證時為 nil
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}
