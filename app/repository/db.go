package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	mysqlDuplicateEntry    = 1062
	postgresUniqueViolated = "23505"
)

var (
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrAmbiguousRefreshToken = errors.New("refresh token matches more than one user")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner func(dest ...interface{}) error

// translateError maps driver specific constraint violations onto ErrDuplicateKey.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolated {
		return ErrDuplicateKey
	}

	return err
}

// rebinder rewrites '?' placeholders for the bind style of the given driver.
// Unknown drivers (sqlmock in tests) keep the query untouched.
type rebinder int

func newRebinder(driverName string) rebinder {
	return rebinder(sqlx.BindType(driverName))
}

func (b rebinder) rebind(query string) string {
	return sqlx.Rebind(int(b), query)
}
