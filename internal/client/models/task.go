package models

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type TimeTracking struct {
	TotalTime   int64             `json:"totalTime"`
	TimeEntries []json.RawMessage `json:"timeEntries,omitempty"`
}

type RecurrencePattern struct {
	Interval   int      `json:"interval"`
	DaysOfWeek []string `json:"daysOfWeek,omitempty"`
}

// Task mirrors the backend task document. The client treats it as an opaque
// payload apart from the fields it displays and validates.
type Task struct {
	ID                string             `json:"_id,omitempty"`
	Title             string             `json:"title"`
	Description       string             `json:"description,omitempty"`
	User              string             `json:"user,omitempty"`
	Priority          Priority           `json:"priority,omitempty"`
	Status            Status             `json:"status,omitempty"`
	DueDate           string             `json:"dueDate,omitempty"`
	DueTime           string             `json:"dueTime,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Category          string             `json:"category,omitempty"`
	Collaborators     []string           `json:"collaborators,omitempty"`
	IsRecurring       bool               `json:"isRecurring,omitempty"`
	Attachments       []string           `json:"attachments,omitempty"`
	TimeTracking      *TimeTracking      `json:"timeTracking,omitempty"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty"`
	CreatedAt         string             `json:"createdAt,omitempty"`
	UpdatedAt         string             `json:"updatedAt,omitempty"`
}

func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Priority, validation.In(PriorityHigh, PriorityMedium, PriorityLow)),
		validation.Field(&t.Status, validation.In(StatusTodo, StatusInProgress, StatusDone)),
	)
}
