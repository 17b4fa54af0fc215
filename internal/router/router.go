// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"

	"algobench/internal/handler"
	"algobench/internal/handler/auth"
	"algobench/internal/handler/users"
	"algobench/internal/middleware"
)

// Authenticator 解析 bearer token 以及帳密登入
type Authenticator interface {
	middleware.Resolver
	auth.Authenticator
}

// Deps 路由需要的依賴，由 cmd/service 組裝
type Deps struct {
	Health handler.HealthChecker
	Auth   Authenticator
	Users  users.UserStore
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	// 健康檢查（不需登入）
	e.GET("/healthz", handler.HealthHandler(d.Health))

	api := e.Group("/api/v1")

	// 取得存取令牌
	api.POST("/auth/token", auth.TokenHandler(d.Auth))

	// 當前使用者
	api.GET("/users/me", users.GetMeHandler(), middleware.RequireUser(d.Auth))

	// 管理員專屬
	admin := api.Group("/admin/users", middleware.RequireAdmin(d.Auth))
	admin.POST("", users.CreateUserHandler(d.Users))
	admin.GET("/:id", users.GetUserHandler(d.Users))
	admin.PATCH("/:id", users.UpdateUserHandler(d.Users))
}
