package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-user/app/entity"
	"github.com/vibast-solutions/ms-go-user/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertUserQuery           = `(?s)INSERT INTO users \(id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?\)`
	findByEmailQuery          = `(?s)SELECT id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at\s+FROM users WHERE email = \?`
	findByEmailPostgresQuery  = `(?s)SELECT id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at\s+FROM users WHERE email = \$1`
	findByIDQuery             = `(?s)SELECT id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at\s+FROM users WHERE id = \?`
	findByRefreshTokenQuery   = `(?s)SELECT id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at\s+FROM users WHERE refresh_token = \?\s+LIMIT 2`
	resetPasswordQuery        = `(?s)UPDATE users SET\s+password_hash = \?,\s+refresh_token = NULL,\s+updated_at = \?\s+WHERE id = \?`
	updateRefreshTokenQuery   = `(?s)UPDATE users SET\s+refresh_token = \?,\s+updated_at = \?\s+WHERE id = \?`
	updateRefreshTokenPgQuery = `(?s)UPDATE users SET\s+refresh_token = \$1,\s+updated_at = \$2\s+WHERE id = \$3`
)

var userColumns = []string{
	"id",
	"email",
	"username",
	"password_hash",
	"first_name",
	"last_name",
	"refresh_token",
	"created_at",
	"updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

func userRow(id, email, username string, refreshToken sql.NullString, now time.Time) []driver.Value {
	return []driver.Value{
		id,
		email,
		username,
		"hash",
		sql.NullString{String: "Alice", Valid: true},
		sql.NullString{Valid: false},
		refreshToken,
		now,
		now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")
	now := time.Now()
	user := &entity.User{
		ID:           "0b8f9c1e-2a4f-4d55-9a3e-0e6b1f1d2c3a",
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "hash",
		FirstName:    sql.NullString{String: "Alice", Valid: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(insertUserQuery).
		WithArgs(
			user.ID,
			user.Email,
			user.Username,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.RefreshToken,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_DuplicateMySQL(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")

	mock.ExpectExec(insertUserQuery).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'users.uq_users_email'"})

	err := repo.Create(context.Background(), &entity.User{ID: "id", Email: "a@x.com", Username: "alice", PasswordHash: "hash"})
	if !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestUserRepository_Create_DuplicatePostgres(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "")

	mock.ExpectExec(insertUserQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_username"})

	err := repo.Create(context.Background(), &entity.User{ID: "id", Email: "a@x.com", Username: "alice", PasswordHash: "hash"})
	if !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestUserRepository_Create_OtherErrorPassesThrough(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")
	boom := errors.New("connection reset")

	mock.ExpectExec(insertUserQuery).WillReturnError(boom)

	err := repo.Create(context.Background(), &entity.User{ID: "id"})
	if !errors.Is(err, boom) || errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")
	now := time.Now()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRow("u-1", "a@x.com", "alice", sql.NullString{}, now)...))

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user == nil || user.ID != "u-1" || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.FirstName.Valid || user.FirstName.String != "Alice" || user.LastName.Valid {
		t.Fatalf("unexpected names: %+v %+v", user.FirstName, user.LastName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByEmail_PostgresPlaceholders(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "pgx")

	mock.ExpectQuery(findByEmailPostgresQuery).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")

	mock.ExpectQuery(findByIDQuery).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByID_Error(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")

	mock.ExpectQuery(findByIDQuery).
		WithArgs("u-1").
		WillReturnError(sql.ErrConnDone)

	if _, err := repo.FindByID(context.Background(), "u-1"); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected ErrConnDone, got %v", err)
	}
}

func TestUserRepository_FindByRefreshToken(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")
	now := time.Now()
	token := sql.NullString{String: "refresh", Valid: true}

	mock.ExpectQuery(findByRefreshTokenQuery).
		WithArgs("refresh").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRow("u-1", "a@x.com", "alice", token, now)...))

	user, err := repo.FindByRefreshToken(context.Background(), "refresh")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user == nil || user.ID != "u-1" || user.RefreshToken.String != "refresh" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByRefreshToken_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")

	mock.ExpectQuery(findByRefreshTokenQuery).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByRefreshToken(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestUserRepository_FindByRefreshToken_Ambiguous(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")
	now := time.Now()
	token := sql.NullString{String: "refresh", Valid: true}

	mock.ExpectQuery(findByRefreshTokenQuery).
		WithArgs("refresh").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userRow("u-1", "a@x.com", "alice", token, now)...).
			AddRow(userRow("u-2", "b@x.com", "bob", token, now)...))

	user, err := repo.FindByRefreshToken(context.Background(), "refresh")
	if !errors.Is(err, repository.ErrAmbiguousRefreshToken) {
		t.Fatalf("expected ErrAmbiguousRefreshToken, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestUserRepository_ResetPassword(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")

	mock.ExpectExec(resetPasswordQuery).
		WithArgs("new-hash", sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ResetPassword(context.Background(), "u-1", "new-hash"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "mysql")

	mock.ExpectExec(updateRefreshTokenQuery).
		WithArgs(sql.NullString{String: "refresh", Valid: true}, sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRefreshToken(context.Background(), "u-1", "refresh"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateRefreshToken_ClearsOnEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewUserRepository(db, "pgx")

	mock.ExpectExec(updateRefreshTokenPgQuery).
		WithArgs(sql.NullString{Valid: false}, sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRefreshToken(context.Background(), "u-1", ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
