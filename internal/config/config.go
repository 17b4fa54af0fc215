// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DatabaseScheme 是 DATABASE_URL 必須使用的非同步 Postgres 前綴
const DatabaseScheme = "postgresql+asyncpg://"

// ErrInvalid 設定不合法（缺少必要值、格式或範圍錯誤），啟動時即失敗
var ErrInvalid = errors.New("invalid configuration")

// Secret 包裝敏感字串，fmt / logrus 輸出時一律遮蔽
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "**********"
}

func (s Secret) GoString() string { return s.String() }

// MarshalText 避免 Secret 被序列化時洩漏原文
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Secret) UnmarshalText(b []byte) error {
	*s = Secret(b)
	return nil
}

// Reveal 回傳原始值，只給簽章金鑰使用
func (s Secret) Reveal() string { return string(s) }

// Settings 由環境變數（與可選的 .env 檔）載入，載入後不可變
type Settings struct {
	Env      string `env:"ENV" envDefault:"dev" validate:"oneof=dev prod test"`
	Debug    bool   `env:"DEBUG" envDefault:"true"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warning error critical"`

	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"postgresql+asyncpg://algobench:algobench@db:5432/algobench" validate:"required,startswith=postgresql+asyncpg://"`
	DBHealthTimeout time.Duration `env:"DB_HEALTH_TIMEOUT" envDefault:"2s" validate:"gt=0"`

	JWTSecret                Secret `env:"JWT_SECRET,required,notEmpty" validate:"required"`
	JWTAlgorithm             string `env:"JWT_ALGORITHM" envDefault:"HS256" validate:"oneof=HS256 RS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60" validate:"min=1,max=1440"`

	CORSAllowOriginsRaw string   `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	CORSAllowOrigins    []string

	// 尚未有任何限流實作使用此值
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120" validate:"min=1"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
}

// AccessTokenTTL 預設存取令牌有效期
func (s *Settings) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}

// PostgresURL 把 DATABASE_URL 轉成 pgx 可用的連線字串
func (s *Settings) PostgresURL() string {
	return "postgresql://" + strings.TrimPrefix(s.DatabaseURL, DatabaseScheme)
}

var validate = validator.New()

// Load 讀取設定；每次呼叫都重新讀取環境，沒有快取。
// envFiles 未指定時讀取 ".env"，檔案不存在則略過；行程環境變數優先於檔案內容。
func Load(envFiles ...string) (*Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	environ := map[string]string{}
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalid, f, err)
		}
		foldEnv(environ, values)
	}
	process := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			process[k] = v
		}
	}
	foldEnv(environ, process)

	s := &Settings{}
	if err := env.ParseWithOptions(s, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("%w: parse env: %v", ErrInvalid, err)
	}
	s.CORSAllowOrigins = ParseOrigins(s.CORSAllowOriginsRaw)

	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s, nil
}

// foldEnv 以大寫名稱合併 src；變數名稱不分大小寫，同一來源內原本就是大寫的名稱優先
func foldEnv(dst, src map[string]string) {
	for k, v := range src {
		if up := strings.ToUpper(k); up != k {
			if _, exact := src[up]; !exact {
				dst[up] = v
			}
		}
	}
	for k, v := range src {
		if strings.ToUpper(k) == k {
			dst[k] = v
		}
	}
}

// ParseOrigins 解析 CSV 或 "*"，去除空白與空項目
func ParseOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "*" {
		return []string{"*"}
	}
	origins := []string{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
