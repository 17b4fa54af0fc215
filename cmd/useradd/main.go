// Command useradd 建立第一個（或任意）使用者，供部署時初始化管理員帳號。
//
//	useradd -email root@example.com -admin
//
// 密碼由 -password 或環境變數 USERADD_PASSWORD 提供。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"algobench/internal/config"
	"algobench/internal/database"
	"algobench/internal/logging"
	"algobench/internal/model"
	"algobench/internal/service"
	"algobench/internal/store"
)

type userCreator interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
}

var (
	loadSettings    = func() (*config.Settings, error) { return config.Load() }
	runMigrationsFn = database.RunMigrations
	openUsers       = func(ctx context.Context, s *config.Settings) (userCreator, func(), error) {
		f, err := database.NewFactory(ctx, s.PostgresURL(), database.WithLogger(logging.New(s, os.Stderr)))
		if err != nil {
			return nil, nil, err
		}
		return store.NewUsers(f), f.Close, nil
	}
	hashPassword = service.HashPassword
	exitFunc     = os.Exit
)

type options struct {
	email    string
	password string
	admin    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.email, "email", "", "user email")
	fs.StringVar(&o.password, "password", os.Getenv("USERADD_PASSWORD"), "user password (default $USERADD_PASSWORD)")
	fs.BoolVar(&o.admin, "admin", false, "grant admin role")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.email = model.NormalizeEmail(o.email)
	if o.email == "" {
		return o, errors.New("-email is required")
	}
	if o.password == "" {
		return o, errors.New("-password or USERADD_PASSWORD is required")
	}
	return o, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}
	if err := runMigrationsFn(s.PostgresURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	users, closeFn, err := openUsers(ctx, s)
	if err != nil {
		return err
	}
	defer closeFn()

	hash, err := hashPassword(o.password)
	if err != nil {
		return err
	}
	role := model.RoleUser
	if o.admin {
		role = model.RoleAdmin
	}
	u, err := users.Create(ctx, model.NewUser(o.email, hash, role))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s %s (%s)\n", u.Role, u.Email, u.ID)
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "useradd:", err)
		exitFunc(1)
	}
}
