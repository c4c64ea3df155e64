// Package tasks is the local cache of the task list. It lets the CLI apply
// create/update/delete optimistically and roll back when the server refuses.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// Repository describes the cached-task operations.
type Repository interface {
	// Upsert inserts a task row or replaces the row with the same ID.
	Upsert(ctx context.Context, task *models.CachedTask) error

	// GetAll returns every cached row ordered by last local change, newest first.
	GetAll(ctx context.Context) ([]models.CachedTask, error)

	// GetByID returns a row or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.CachedTask, error)

	// DeleteByID removes a row; common.ErrorNotFound when nothing matched.
	DeleteByID(ctx context.Context, id string) error

	// DeleteConfirmed drops every row that is not pending. Used before the
	// cache is refilled from a fresh server list.
	DeleteConfirmed(ctx context.Context) error

	// DeleteAll empties the cache, pending rows included.
	DeleteAll(ctx context.Context) error
}
