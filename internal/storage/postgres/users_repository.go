package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventboard/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (_ *users.User, err error) {
	defer observe("get_user_by_username")(&err)

	var user users.User
	err = r.queryer().QueryRow(ctx, `
SELECT id::text, username, password_hash, created_at
  FROM users
 WHERE username = $1
`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (_ *users.User, err error) {
	defer observe("create_user")(&err)

	var user users.User
	err = r.queryer().QueryRow(ctx, `
INSERT INTO users (username, password_hash)
VALUES ($1, $2)
RETURNING id::text, username, password_hash, created_at
`, params.Username, params.PasswordHash).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
