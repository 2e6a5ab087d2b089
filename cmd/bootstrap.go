package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/vibast-solutions/ms-go-user/app/repository"
	"github.com/vibast-solutions/ms-go-user/app/service"
	"github.com/vibast-solutions/ms-go-user/config"
)

const pingTimeout = 5 * time.Second

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err = configureLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func newUserAuthService(db *sql.DB, cfg *config.Config) service.UserAuthService {
	return service.NewUserAuthService(
		repository.NewUserRepository(db, cfg.DriverName()),
		service.NewBcryptHasher(cfg.Password.BcryptCost),
		service.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL),
		cfg,
	)
}

// newCommandService wires the user service for one-shot CLI commands.
func newCommandService() (service.UserAuthService, *config.Config, *sql.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	return newUserAuthService(db, cfg), cfg, db, nil
}
