package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.CachedTask) error {
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `INSERT INTO tasks (id, payload, pending, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload,
			pending = excluded.pending,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Payload, t.Pending, updatedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

func scanTask(s interface{ Scan(dest ...any) error }) (*models.CachedTask, error) {
	var (
		item      models.CachedTask
		updatedAt int64
	)
	if err := s.Scan(&item.ID, &item.Payload, &item.Pending, &updatedAt); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &item, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.CachedTask, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, payload, pending, updated_at FROM tasks ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var result []models.CachedTask
	for rows.Next() {
		item, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.CachedTask, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, payload, pending, updated_at FROM tasks WHERE id = ?`, id)
	item, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteConfirmed(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE pending = 0`); err != nil {
		return fmt.Errorf("failed to clear confirmed tasks: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	return nil
}
