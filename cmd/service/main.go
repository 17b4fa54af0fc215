// File: cmd/service/main.go
// @title        AlgoBench API
// @version      1.0
// @description  AlgoBench 後端認證 API 文件
// @host         localhost:8080
// @BasePath     /
// @securityDefinitions.oauth2.password OAuth2Password
// @tokenUrl /api/v1/auth/token
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"algobench/internal/config"
	"algobench/internal/database"
	"algobench/internal/logging"
	"algobench/internal/router"
	"algobench/internal/service"
	"algobench/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	_ "algobench/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadSettings    = func() (*config.Settings, error) { return config.Load() }
	newFactory      = database.NewFactory
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	logOutput       io.Writer = os.Stdout
	exitFunc        = os.Exit
)

func newEcho(s *config.Settings, log *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Debug = s.Debug
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(logging.Inject(log))
	e.Use(middleware.Recover())
	// 空清單時不掛 CORS，echo 預設會放行所有來源
	if len(s.CORSAllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: s.CORSAllowOrigins}))
	}
	return e
}

func run() error {
	s, err := loadSettings()
	if err != nil {
		return fmt.Errorf("設定載入失敗: %w", err)
	}
	log := logging.New(s, logOutput)
	log.WithFields(logrus.Fields{
		"env":        s.Env,
		"jwt_alg":    s.JWTAlgorithm,
		"jwt_secret": s.JWTSecret,
	}).Info("settings loaded")

	tokens, err := service.NewTokenService(s)
	if err != nil {
		return fmt.Errorf("TokenService 建立失敗: %w", err)
	}

	if err := runMigrationsFn(s.PostgresURL()); err != nil {
		return fmt.Errorf("Migration 執行失敗: %w", err)
	}

	sessions, err := newFactory(context.Background(), s.PostgresURL(),
		database.WithHealthTimeout(s.DBHealthTimeout),
		database.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %w", err)
	}
	defer sessions.Close()

	users := store.NewUsers(sessions)
	auth := service.NewAuthenticator(tokens, users, log)

	log.WithField("rate_limit_per_minute", s.RateLimitPerMinute).Warn("rate limiting is not enforced")

	e := newEcho(s, log)
	router.Setup(e, router.Deps{Health: sessions, Auth: auth, Users: users})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	log.WithField("addr", s.HTTPAddr).Info("http server starting")
	return startServer(e, s.HTTPAddr)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}
