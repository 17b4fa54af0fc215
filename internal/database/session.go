// File: internal/database/session.go
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable 無法取得資料庫連線
var ErrUnavailable = errors.New("database unavailable")

const defaultHealthTimeout = 2 * time.Second

// newPool 測試可覆寫
var newPool = NewPgxPool

// Factory 擁有連線池，並提供具範圍的 session。
// 生命週期（建立、Reset、Close）由組裝根負責。
type Factory struct {
	mu            sync.RWMutex
	db            DB
	healthTimeout time.Duration
	log           logrus.FieldLogger
}

type Option func(*Factory)

// WithHealthTimeout 設定健康檢查的最長等待時間
func WithHealthTimeout(d time.Duration) Option {
	return func(f *Factory) {
		if d > 0 {
			f.healthTimeout = d
		}
	}
}

// WithLogger 設定 logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFactory 連線到 url 並建立 Factory
func NewFactory(ctx context.Context, url string, opts ...Option) (*Factory, error) {
	db, err := newPool(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return FromDB(db, opts...), nil
}

// FromDB 以既有的 DB 建立 Factory
func FromDB(db DB, opts ...Option) *Factory {
	f := &Factory{
		db:            db,
		healthTimeout: defaultHealthTimeout,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithSession 借出一條連線執行 fn，任何離開路徑（含 panic）都會歸還連線。
// 借不到連線時回傳 ErrUnavailable。
func (f *Factory) WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	conn, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(ctx, conn)
}

func (f *Factory) acquire(ctx context.Context) (Conn, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.db == nil {
		return nil, fmt.Errorf("%w: pool closed", ErrUnavailable)
	}
	conn, err := f.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire: %w", ErrUnavailable, err)
	}
	return conn, nil
}

// Healthy 在 healthTimeout 內執行 SELECT 1；失敗回傳 false，不回傳錯誤
func (f *Factory) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, f.healthTimeout)
	defer cancel()

	err := f.WithSession(ctx, func(ctx context.Context, s Session) error {
		var one int
		return s.QueryRow(ctx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		f.log.WithError(err).Warn("database health check failed")
		return false
	}
	return true
}

// Reset 連到新的 url，替換連線池並關閉舊的
func (f *Factory) Reset(ctx context.Context, url string) error {
	db, err := newPool(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	f.mu.Lock()
	old := f.db
	f.db = db
	f.mu.Unlock()

	if old != nil {
		old.Close()
	}
	f.log.Info("database pool reset")
	return nil
}

// Close 關閉連線池；之後的 WithSession 回傳 ErrUnavailable
func (f *Factory) Close() {
	f.mu.Lock()
	old := f.db
	f.db = nil
	f.mu.Unlock()

	if old != nil {
		old.Close()
	}
}
