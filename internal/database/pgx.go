package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxpoolNew 測試可覆寫
var pgxpoolNew = pgxpool.New

type pgxPool struct {
	*pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewPgxPool 建立 pgx 連線池；url 必須是 pgx 可解析的 postgres:// 或 postgresql:// 連線字串
func NewPgxPool(ctx context.Context, url string) (DB, error) {
	pool, err := pgxpoolNew(ctx, url)
	if err != nil {
		return nil, err
	}
	return pgxPool{Pool: pool}, nil
}
