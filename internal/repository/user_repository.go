package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"assistant-chat/internal/domain"
	assistant_errors "assistant-chat/pkg/errors"
)

type PostgresUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return assistant_errors.ErrAlreadyExists
		}
		return storageErr(err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, `username = $1`, username)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *PostgresUserRepository) getBy(ctx context.Context, where string, arg any) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, assistant_errors.ErrNotFound
		}
		return domain.User{}, storageErr(err)
	}
	return u, nil
}
