package store

import (
	"context"
	"errors"
	"fmt"

	"algobench/internal/database"
	"algobench/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

const userColumns = `id, email, hashed_password, role::text, is_active, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&role,
		&u.IsActive,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return u, nil
}

// GetUserByEmail 以不分大小寫的 email 查詢，對應 lower(email) 唯一索引
func GetUserByEmail(ctx context.Context, db database.Session, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users WHERE lower(email) = $1`,
		model.NormalizeEmail(email),
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.Session, id uuid.UUID) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users WHERE id = $1`,
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("GetUserByID: %w", err)
	}
	return u, nil
}

// CreateUser 寫入前正規化 email；created_at 由資料庫產生
func CreateUser(ctx context.Context, db database.Session, u *model.User) (*model.User, error) {
	u.Email = model.NormalizeEmail(u.Email)
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	row := db.QueryRow(ctx,
		`INSERT INTO users (id, email, hashed_password, role, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		u.ID,
		u.Email,
		u.HashedPassword,
		string(u.Role),
		u.IsActive,
	)
	if err := row.Scan(&u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("CreateUser: %w", ErrEmailTaken)
		}
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// UpdateUser 以單一 UPDATE 套用有給的欄位（nil 表示不變），回傳更新後的記錄
func UpdateUser(ctx context.Context, db database.Session, id uuid.UUID, role *model.Role, active *bool) (*model.User, error) {
	var roleArg *string
	if role != nil {
		r := string(*role)
		roleArg = &r
	}
	row := db.QueryRow(ctx,
		`UPDATE users
		 SET role = COALESCE($1::user_role, role),
		     is_active = COALESCE($2::boolean, is_active)
		 WHERE id = $3
		 RETURNING `+userColumns,
		roleArg,
		active,
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("UpdateUser: %w", err)
	}
	return u, nil
}
