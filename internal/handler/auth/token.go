// File: internal/handler/auth/token.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"algobench/internal/database"
	"algobench/internal/dto"
	"algobench/internal/logging"
	"algobench/internal/model"
	"algobench/internal/service"

	"github.com/labstack/echo/v4"
)

// Authenticator 帳密登入與簽發令牌
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
	IssueToken(user *model.User) (string, time.Time, error)
}

// TokenHandler 使用 email/password 驗證並回傳 JWT
// @Summary     取得存取令牌
// @Description OAuth2 password 表單，username 為 email；回傳 bearer 令牌與到期時間
// @Tags        auth
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       username formData string true "使用者 Email"
// @Param       password formData string true "使用者密碼"
// @Success     200      {object} dto.TokenResponse
// @Failure     400      {object} dto.HTTPError
// @Failure     401      {object} dto.HTTPError
// @Failure     403      {object} dto.HTTPError
// @Failure     500      {object} dto.HTTPError
// @Failure     503      {object} dto.HTTPError
// @Router      /api/v1/auth/token [post]
func TokenHandler(auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: fmt.Sprintf("無效的表單資料: %v", err)})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		user, err := auth.Login(c.Request().Context(), req.Username, req.Password)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "invalid credentials"})
		case errors.Is(err, service.ErrUserInactive):
			return c.JSON(http.StatusForbidden, dto.HTTPError{Message: "inactive user"})
		case errors.Is(err, database.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "database unavailable"})
		case err != nil:
			logging.From(c).WithError(err).Error("login failed")
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "internal server error"})
		}

		token, expiresAt, err := auth.IssueToken(user)
		if err != nil {
			logging.From(c).WithError(err).Error("issue token failed")
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "internal server error"})
		}

		return c.JSON(http.StatusOK, dto.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresAt:   expiresAt,
		})
	}
}
