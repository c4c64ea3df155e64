// Package models defines client-side data models used by the TaskKeeper CLI:
// wire payloads of the task backend and the rows cached in the local database.
package models

import (
	"encoding/json"
	"time"
)

// CachedTask is a row of the local task cache.
type CachedTask struct {
	// ID is the server id, or a "local-" id for an optimistic insert that
	// has not been confirmed yet.
	ID string

	// Payload is the JSON encoding of the Task as last seen or last written.
	Payload []byte

	// Pending marks rows whose server round-trip has not completed.
	Pending bool

	// UpdatedAt is the last local modification time in UTC.
	UpdatedAt time.Time
}

// Task decodes the cached payload.
func (c *CachedTask) Task() (*Task, error) {
	var t Task
	if err := json.Unmarshal(c.Payload, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// NewCachedTask encodes t for the local cache.
func NewCachedTask(t *Task, pending bool) (*CachedTask, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return &CachedTask{ID: t.ID, Payload: b, Pending: pending, UpdatedAt: time.Now().UTC()}, nil
}
