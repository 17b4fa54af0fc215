// File: internal/handler/health.go
package handler

import (
	"context"
	"net/http"

	"algobench/internal/dto"

	"github.com/labstack/echo/v4"
)

// HealthChecker 資料庫探測；失敗只回傳 false
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthHandler 健康檢查
// @Summary     Health Check
// @Description 以 SELECT 1 探測資料庫，不需要認證
// @Tags        health
// @Produce     json
// @Success     200 {object} dto.HealthResponse
// @Failure     503 {object} dto.HealthResponse
// @Router      /healthz [get]
func HealthHandler(db HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !db.Healthy(c.Request().Context()) {
			return c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
		}
		return c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
	}
}
