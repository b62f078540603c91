package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/todo-auth/internal/models"
)

const selectUserByEmail = `SELECT id, email, username, password_hash, is_active, created_at, updated_at
	FROM users
	WHERE email = $1`

const insertUser = `INSERT INTO users (email, username, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id, is_active, created_at, updated_at`

// GetUserByEmail возвращает пользователя по точному совпадению email.
// Если строки нет, возвращает ErrUserNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, selectUserByEmail, email).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя в одной транзакции и возвращает его
// с заполненными id, is_active и отметками времени.
//
// Нарушение уникальности email возвращается как ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"

	created := user
	err := WithTx(ctx, s.DB, nil, func(ctx context.Context, tx DBTX) error {
		return tx.QueryRowContext(ctx, insertUser, user.Email, user.Username, user.PasswordHash).
			Scan(&created.ID, &created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}
