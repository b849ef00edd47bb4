package repository

import (
	"context"
	"database/sql"
	"fmt"

	"labtrack-data/internal/domain"
)

// PostgresUsersRepository implements UsersRepository on the users table.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, username, password_hash, is_admin
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsAdmin,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *PostgresUsersRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, ErrNotFound
	}

	query := `
		SELECT id, username, password_hash, is_admin
		FROM users
		WHERE username = $1
	`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsAdmin,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	if user == nil {
		return 0, fmt.Errorf("user is required")
	}
	if user.Username == "" {
		return 0, fmt.Errorf("username is required")
	}

	query := `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
	).Scan(&id)
	if err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

func (r *PostgresUsersRepository) UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
