package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diarylab/backend/internal/model/user"
)

// ErrUserNotFound signals lookup of an unknown user.
var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts a new account and returns it with its generated ID.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, role string) (user.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role)
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return user.User{}, fmt.Errorf("read user id: %w", err)
	}

	return s.UserByID(ctx, id)
}

// UserByUsername fetches a user by its unique username.
func (s *Store) UserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`,
		username)
	return scanUser(row)
}

// UserByID fetches a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (user.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id = ?`,
		id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrUserNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
