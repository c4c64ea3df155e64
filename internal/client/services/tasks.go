package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/google/uuid"
)

const (
	MsgFetchTasksFailed = "Failed to fetch tasks"
	MsgCreateTaskFailed = "Failed to create task"
	MsgUpdateTaskFailed = "Failed to update task"
	MsgDeleteTaskFailed = "Failed to delete task"
	MsgTaskNotFound     = "Task not found"
	MsgTaskPending      = "Task is still being saved"
)

// LocalIDPrefix marks ids of optimistic rows the server has not confirmed.
const LocalIDPrefix = "local-"

// TaskService manages the task list with optimistic local state. Every
// change is written to the local cache first and rolled back when the
// server refuses it.
type TaskService interface {
	// Refresh replaces the confirmed part of the cache with the server list.
	// On failure it still returns the cached list alongside the error.
	Refresh(ctx context.Context) ([]models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	Update(ctx context.Context, id string, t *models.Task) (*models.Task, error)
	SetStatus(ctx context.Context, id string, status models.Status) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	// Purge empties the cache. It is registered with the session manager so
	// one account's tasks never outlive its session.
	Purge(ctx context.Context)
}

type taskService struct {
	client client.Client
	db     *sql.DB
	log    logging.Logger
}

func NewTaskService(c client.Client, db *sql.DB, log logging.Logger) TaskService {
	return &taskService{client: c, db: db, log: log.With("component", "tasks")}
}

func (s *taskService) repo(db dbx.DBTX) tasks.Repository {
	return tasks.NewSQLiteRepository(db)
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

func (s *taskService) Refresh(ctx context.Context) ([]models.Task, error) {
	list, err := s.client.ListTasks(ctx)
	if err != nil {
		cached, cerr := s.List(ctx)
		if cerr != nil {
			s.log.Error(ctx, "failed to read task cache", "error", cerr)
		}
		return cached, client.Failure("tasks", MsgFetchTasksFailed, err)
	}

	// keep the server order: newest first in the cache means descending stamps
	base := time.Now().UTC()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.DeleteConfirmed(ctx); err != nil {
			return err
		}
		for i := range list {
			row, err := models.NewCachedTask(&list[i], false)
			if err != nil {
				return err
			}
			row.UpdatedAt = base.Add(-time.Duration(i) * time.Microsecond)
			if err := repo.Upsert(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "failed to refill task cache", "error", err)
		return list, nil
	}

	return s.List(ctx)
}

func (s *taskService) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.repo(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading tasks: %w", err)
	}

	out := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.Task()
		if err != nil {
			s.log.Warn(ctx, "skipping unreadable cached task", "id", row.ID, "error", err)
			continue
		}
		if t.ID == "" {
			t.ID = row.ID
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *taskService) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if err := validate("createtask", t); err != nil {
		return nil, err
	}

	draft := *t
	draft.ID = LocalIDPrefix + uuid.NewString()
	if draft.Status == "" {
		draft.Status = models.StatusTodo
	}

	row, err := models.NewCachedTask(&draft, true)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	repo := s.repo(s.db)
	if err := repo.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("error saving task: %w", err)
	}

	body := *t
	body.ID = ""
	created, err := s.client.CreateTask(ctx, &body)
	if err != nil {
		s.rollback(ctx, draft.ID, nil)
		return nil, client.Failure("createtask", MsgCreateTaskFailed, err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.DeleteByID(ctx, draft.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		confirmed, err := models.NewCachedTask(created, false)
		if err != nil {
			return err
		}
		return repo.Upsert(ctx, confirmed)
	})
	if err != nil {
		s.log.Error(ctx, "failed to confirm created task locally", "id", created.ID, "error", err)
	}
	return created, nil
}

// previous loads the cached row for id and refuses rows that are still
// being created.
func (s *taskService) previous(ctx context.Context, op, fallback, id string) (*models.CachedTask, error) {
	if IsLocalID(id) {
		return nil, &client.OperationError{Op: op, Message: MsgTaskPending}
	}
	prev, err := s.repo(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &client.OperationError{Op: op, Message: MsgTaskNotFound, Err: err}
		}
		return nil, &client.OperationError{Op: op, Message: fallback, Err: err}
	}
	return prev, nil
}

func (s *taskService) Update(ctx context.Context, id string, t *models.Task) (*models.Task, error) {
	if err := validate("updatetask", t); err != nil {
		return nil, err
	}
	prev, err := s.previous(ctx, "updatetask", MsgUpdateTaskFailed, id)
	if err != nil {
		return nil, err
	}

	next := *t
	next.ID = id
	row, err := models.NewCachedTask(&next, true)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	if err := s.repo(s.db).Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("error saving task: %w", err)
	}

	updated, err := s.client.UpdateTask(ctx, id, &next)
	if err != nil {
		s.rollback(ctx, id, prev)
		return nil, client.Failure("updatetask", MsgUpdateTaskFailed, err)
	}

	confirmed, err := models.NewCachedTask(updated, false)
	if err == nil {
		err = s.repo(s.db).Upsert(ctx, confirmed)
	}
	if err != nil {
		s.log.Error(ctx, "failed to confirm updated task locally", "id", id, "error", err)
	}
	return updated, nil
}

func (s *taskService) SetStatus(ctx context.Context, id string, status models.Status) (*models.Task, error) {
	prev, err := s.previous(ctx, "updatetask", MsgUpdateTaskFailed, id)
	if err != nil {
		return nil, err
	}
	t, err := prev.Task()
	if err != nil {
		return nil, &client.OperationError{Op: "updatetask", Message: MsgUpdateTaskFailed, Err: err}
	}
	t.Status = status
	return s.Update(ctx, id, t)
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	prev, err := s.previous(ctx, "deletetask", MsgDeleteTaskFailed, id)
	if err != nil {
		return err
	}
	if err := s.repo(s.db).DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}

	if err := s.client.DeleteTask(ctx, id); err != nil {
		s.rollback(ctx, id, prev)
		return client.Failure("deletetask", MsgDeleteTaskFailed, err)
	}
	return nil
}

func (s *taskService) Purge(ctx context.Context) {
	if err := s.repo(s.db).DeleteAll(ctx); err != nil {
		s.log.Error(ctx, "failed to purge task cache", "error", err)
		return
	}
	s.log.Debug(ctx, "task cache purged")
}

// rollback restores prev under id, or removes the row when prev is nil.
func (s *taskService) rollback(ctx context.Context, id string, prev *models.CachedTask) {
	repo := s.repo(s.db)
	var err error
	if prev == nil {
		err = repo.DeleteByID(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			err = nil
		}
	} else {
		err = repo.Upsert(ctx, prev)
	}
	if err != nil {
		s.log.Error(ctx, "failed to roll back optimistic change", "id", id, "error", err)
		return
	}
	s.log.Debug(ctx, "rolled back optimistic change", "id", id)
}
