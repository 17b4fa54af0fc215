// Package logging 建立 logrus logger，並提供 echo 的請求日誌中介層。
package logging

import (
	"io"
	"os"
	"time"

	"algobench/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

var levels = map[string]logrus.Level{
	"debug":    logrus.DebugLevel,
	"info":     logrus.InfoLevel,
	"warning":  logrus.WarnLevel,
	"error":    logrus.ErrorLevel,
	"critical": logrus.FatalLevel,
}

// ParseLevel 將 LOG_LEVEL 轉成 logrus 等級，未知值視為 info
func ParseLevel(level string) logrus.Level {
	if l, ok := levels[level]; ok {
		return l
	}
	return logrus.InfoLevel
}

// New 依設定建立 logger；prod 輸出 JSON，其他環境輸出文字
func New(s *config.Settings, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(ParseLevel(s.LogLevel))
	if s.Env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// RequestLogger 把每個請求記錄到 logrus
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

const contextKey = "logger"

// Inject 把 logger 放進 echo.Context，handler 以 From 取回
func Inject(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			entry := log.WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.Set(contextKey, entry)
			return next(c)
		}
	}
}

// From 取出請求的 logger；沒有注入時退回 logrus 標準 logger
func From(c echo.Context) logrus.FieldLogger {
	if log, ok := c.Get(contextKey).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}
