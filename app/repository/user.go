package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-user/app/entity"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at`

type UserRepository struct {
	db DBTX
	rebinder
}

func NewUserRepository(db DBTX, driverName string) *UserRepository {
	return &UserRepository{db: db, rebinder: newRebinder(driverName)}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return translateError(err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE email = ?
	`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

// FindByRefreshToken fails closed with ErrAmbiguousRefreshToken when more than
// one row carries the token.
func (r *UserRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE refresh_token = ?
		LIMIT 2
	`
	rows, err := r.db.QueryContext(ctx, r.rebind(query), token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found *entity.User
	for rows.Next() {
		if found != nil {
			return nil, ErrAmbiguousRefreshToken
		}
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		found = user
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return found, nil
}

// ResetPassword stores the new hash and drops the refresh token in one statement.
func (r *UserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE users SET
			password_hash = ?,
			refresh_token = NULL,
			updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query), passwordHash, time.Now(), id)
	return err
}

// UpdateRefreshToken stores token for the user; an empty token clears it.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	query := `
		UPDATE users SET
			refresh_token = ?,
			updated_at = ?
		WHERE id = ?
	`
	value := sql.NullString{String: token, Valid: token != ""}
	_, err := r.db.ExecContext(ctx, r.rebind(query), value, time.Now(), id)
	return translateError(err)
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(query), args...)
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

func scanUser(scan rowScanner) (*entity.User, error) {
	user := &entity.User{}
	if err := scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return user, nil
}
