package auth

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamgrid/gateway/integration/database/pg"
)

// PGRepository persists users in PostgreSQL. It participates in a
// caller-managed transaction when one is carried by the context.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type row interface {
	Scan(dest ...any) error
}

func (r *PGRepository) queryRow(ctx context.Context, sql string, args ...any) row {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *PGRepository) Create(ctx context.Context, email, name string, passwordHash []byte) (*User, error) {
	const q = `INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, created_at`

	u, err := scanUser(r.queryRow(ctx, q, email, name, passwordHash))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (r *PGRepository) ByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT id, email, name, password_hash, created_at
		FROM users WHERE lower(email) = $1`

	u, err := scanUser(r.queryRow(ctx, q, strings.ToLower(email)))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PGRepository) ByID(ctx context.Context, id int64) (*User, error) {
	const q = `SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = $1`

	u, err := scanUser(r.queryRow(ctx, q, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
