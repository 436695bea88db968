package notes

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamgrid/gateway/integration/database/pg"
)

// PGRepository persists notes in PostgreSQL. It participates in a
// caller-managed transaction when one is carried by the context.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, note *Note) error {
	const q = `INSERT INTO notes (id, user_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	args := []any{note.ID, note.UserID, note.Title, note.Body, note.CreatedAt, note.UpdatedAt}
	if tx, ok := pg.TxFromContext(ctx); ok {
		_, err := tx.Exec(ctx, q, args...)
		return err
	}
	_, err := r.pool.Exec(ctx, q, args...)
	return err
}

func (r *PGRepository) ByID(ctx context.Context, userID int64, id string) (*Note, error) {
	const q = `SELECT id, user_id, title, body, created_at, updated_at
		FROM notes WHERE user_id = $1 AND id = $2`

	return scanNote(r.pool.QueryRow(ctx, q, userID, id))
}

func (r *PGRepository) List(ctx context.Context, userID int64, limit int) ([]*Note, error) {
	const q = `SELECT id, user_id, title, body, created_at, updated_at
		FROM notes WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, userID int64, id, title, body string) (*Note, error) {
	const q = `UPDATE notes SET title = $3, body = $4, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, title, body, created_at, updated_at`

	return scanNote(r.pool.QueryRow(ctx, q, userID, id, title, body))
}

func (r *PGRepository) Delete(ctx context.Context, userID int64, id string) error {
	const q = `DELETE FROM notes WHERE user_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, q, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &n, nil
}

var _ Repository = (*PGRepository)(nil)
