package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	FirstName    sql.NullString
	LastName     sql.NullString
	RefreshToken sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
